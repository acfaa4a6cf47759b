package audit

import (
	"time"
)

type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Record is an append-only trace of an accepted mutation: who did what to
// which entity, and the entity state that resulted. Records are never
// updated or deleted by the application.
type Record struct {
	ID         string    `json:"id" gorm:"primaryKey;size:26"`
	Operation  Operation `json:"operation" gorm:"column:operation;not null"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID   int64     `json:"entity_id" gorm:"column:entity_id;not null;index:idx_audit_entity"`
	ActorID    int64     `json:"actor_id" gorm:"column:actor_id;not null"`
	CompanyID  int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	Snapshot   string    `json:"snapshot" gorm:"column:snapshot;type:jsonb"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;index:idx_audit_entity"`
}

func (Record) TableName() string {
	return "audit_records"
}
