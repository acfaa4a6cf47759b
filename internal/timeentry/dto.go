package timeentry

import (
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/core/common/validation"
)

// CreateTimeEntryDTO is the request payload for logging time. StartTime
// and EndTime are optional HH:MM strings; Date is YYYY-MM-DD. UserID may
// be set by admins to log on behalf of another user.
type CreateTimeEntryDTO struct {
	UserID    int64   `json:"user_id,omitempty"`
	ProjectID int64   `json:"project_id"`
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
}

// Validate checks field shape only; business rules (overlaps, ceilings,
// project state) belong to the Validator.
func (dto CreateTimeEntryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("project_id", dto.ProjectID).Required()
	v.Field("date", dto.Date).Required().DateISO()
	v.Field("hours", dto.Hours).Required()
	v.Field("start_time", dto.StartTime).TimeOfDay()
	v.Field("end_time", dto.EndTime).TimeOfDay()
	v.Field("notes", dto.Notes).MaxLength(1000)
	return v.Validate()
}

// ToDraft parses the DTO into a validation draft for actorID. Callers must
// run Validate first; parse errors here indicate a programming error.
func (dto CreateTimeEntryDTO) ToDraft(actorID int64) (Draft, error) {
	userID := dto.UserID
	if userID == 0 {
		userID = actorID
	}

	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return Draft{}, err
	}

	draft := Draft{
		UserID:    userID,
		ProjectID: dto.ProjectID,
		Date:      date,
		Hours:     dto.Hours,
		Notes:     dto.Notes,
	}

	if dto.StartTime != nil {
		m, err := parseMinute(*dto.StartTime)
		if err != nil {
			return Draft{}, err
		}
		draft.StartMinute = &m
	}
	if dto.EndTime != nil {
		m, err := parseMinute(*dto.EndTime)
		if err != nil {
			return Draft{}, err
		}
		draft.EndMinute = &m
	}

	return draft, nil
}

// UpdateTimeEntryDTO carries a full replacement of the mutable entry
// fields; partial updates re-run the same validation as creation.
type UpdateTimeEntryDTO struct {
	ProjectID int64   `json:"project_id"`
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
}

func (dto UpdateTimeEntryDTO) Validate() *internal.AppError {
	return CreateTimeEntryDTO{
		ProjectID: dto.ProjectID,
		Date:      dto.Date,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Hours:     dto.Hours,
		Notes:     dto.Notes,
	}.Validate()
}

func (dto UpdateTimeEntryDTO) ToDraft(userID int64) (Draft, error) {
	return CreateTimeEntryDTO{
		UserID:    userID,
		ProjectID: dto.ProjectID,
		Date:      dto.Date,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Hours:     dto.Hours,
		Notes:     dto.Notes,
	}.ToDraft(userID)
}

func parseMinute(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
