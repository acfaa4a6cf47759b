package notification

import (
	"errors"
	"strings"
	"time"
)

// Message is a lightweight in-app notification. Staff and portal clients
// read the same stream, filtered by tenant and client visibility.
type Message struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CompanyID int64     `json:"company_id" gorm:"column:company_id;not null;index:idx_messages_company_id"`
	ClientID  *int64    `json:"client_id,omitempty" gorm:"column:client_id;index"`
	SenderID  int64     `json:"sender_id" gorm:"column:sender_id;not null"`
	Subject   string    `json:"subject" gorm:"column:subject;not null"`
	Body      string    `json:"body" gorm:"column:body;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Message) TableName() string {
	return "messages"
}

type CreateMessageDTO struct {
	ClientID *int64 `json:"client_id,omitempty"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

func (d CreateMessageDTO) Validate() error {
	if strings.TrimSpace(d.Subject) == "" {
		return errors.New("subject is required")
	}
	if len(d.Subject) > 200 {
		return errors.New("subject must not exceed 200 characters")
	}
	if strings.TrimSpace(d.Body) == "" {
		return errors.New("body is required")
	}
	if len(d.Body) > 10000 {
		return errors.New("body must not exceed 10000 characters")
	}
	return nil
}
