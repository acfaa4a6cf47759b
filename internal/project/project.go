package project

import (
	"errors"
	"strings"
	"time"
)

// Project is tenant-scoped context for time entries: an entry may only be
// logged against an existing, active project of the caller's company.
type Project struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CompanyID int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	Code      string    `json:"code" gorm:"column:code;not null"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	ClientID  *int64    `json:"client_id,omitempty" gorm:"column:client_id"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type CreateProjectDTO struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ClientID *int64 `json:"client_id,omitempty"`
}

func (d CreateProjectDTO) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return errors.New("code is required")
	}
	if len(d.Code) > 32 {
		return errors.New("code must not exceed 32 characters")
	}
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if len(d.Name) > 200 {
		return errors.New("name must not exceed 200 characters")
	}
	return nil
}

type UpdateProjectDTO struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (d UpdateProjectDTO) Validate() error {
	if d.Name == nil && d.IsActive == nil {
		return errors.New("nothing to update")
	}
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return errors.New("name must not be empty")
	}
	return nil
}
