package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TimeEntryCreated = "timeentry.created"
	TimeEntryUpdated = "timeentry.updated"
	TimeEntryDeleted = "timeentry.deleted"

	ProjectChanged = "project.changed"
	HolidayChanged = "holiday.changed"
)

type TimeEntryEvent struct {
	BaseEvent
	EntryID   int64   `json:"entry_id"`
	UserID    int64   `json:"user_id"`
	ProjectID int64   `json:"project_id"`
	Hours     float64 `json:"hours"`
}

func NewTimeEntryEvent(eventType string, entryID, userID, projectID int64, hours float64) *TimeEntryEvent {
	return &TimeEntryEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":   entryID,
				"user_id":    userID,
				"project_id": projectID,
				"hours":      hours,
			},
		},
		EntryID:   entryID,
		UserID:    userID,
		ProjectID: projectID,
		Hours:     hours,
	}
}

type EntityChangedEvent struct {
	BaseEvent
	EntityID  int64 `json:"entity_id"`
	CompanyID int64 `json:"company_id"`
}

func NewEntityChangedEvent(eventType string, entityID, companyID int64) *EntityChangedEvent {
	return &EntityChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity_id":  entityID,
				"company_id": companyID,
			},
		},
		EntityID:  entityID,
		CompanyID: companyID,
	}
}
