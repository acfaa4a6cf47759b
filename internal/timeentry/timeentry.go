package timeentry

import (
	"time"
)

// TimeEntry is a logged unit of work: hours booked by a user against a
// project on one calendar day, optionally with an explicit time range.
// StartMinute/EndMinute are minutes from midnight; both set or both nil.
type TimeEntry struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	CompanyID   int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	UserID      int64     `json:"user_id" gorm:"column:user_id;not null;index:idx_entries_user_day"`
	ProjectID   int64     `json:"project_id" gorm:"column:project_id;not null"`
	EntryDate   time.Time `json:"entry_date" gorm:"column:entry_date;type:date;index:idx_entries_user_day"`
	StartMinute *int      `json:"start_minute,omitempty" gorm:"column:start_minute"`
	EndMinute   *int      `json:"end_minute,omitempty" gorm:"column:end_minute"`
	Hours       float64   `json:"hours" gorm:"column:hours;not null"`
	Notes       string    `json:"notes" gorm:"column:notes"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

// HasRange reports whether the entry carries an explicit time range.
func (e *TimeEntry) HasRange() bool {
	return e.StartMinute != nil && e.EndMinute != nil
}

// Draft is a proposed, not-yet-persisted time entry submitted for
// validation.
type Draft struct {
	UserID      int64
	ProjectID   int64
	Date        time.Time
	StartMinute *int
	EndMinute   *int
	Hours       float64
	Notes       string
}

func (d Draft) HasRange() bool {
	return d.StartMinute != nil && d.EndMinute != nil
}

// Entry materializes the draft into a persistable entity for companyID.
func (d Draft) Entry(companyID int64) *TimeEntry {
	now := time.Now()
	return &TimeEntry{
		CompanyID:   companyID,
		UserID:      d.UserID,
		ProjectID:   d.ProjectID,
		EntryDate:   d.Date,
		StartMinute: d.StartMinute,
		EndMinute:   d.EndMinute,
		Hours:       d.Hours,
		Notes:       d.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FormatMinute renders minutes-from-midnight as HH:MM for API responses
// and error messages.
func FormatMinute(m int) string {
	return time.Date(0, 1, 1, 0, m, 0, 0, time.UTC).Format("15:04")
}
