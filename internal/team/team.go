package team

import (
	"errors"
	"strings"
	"time"
)

// Team groups company members for reporting. Membership is a plain join
// table; a user can belong to several teams.
type Team struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CompanyID int64     `json:"company_id" gorm:"column:company_id;not null;index"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	LeadID    *int64    `json:"lead_id,omitempty" gorm:"column:lead_id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	Members []Member `json:"members,omitempty" gorm:"-"`
}

func (Team) TableName() string {
	return "teams"
}

type Member struct {
	TeamID  int64     `json:"team_id" gorm:"column:team_id;primaryKey"`
	UserID  int64     `json:"user_id" gorm:"column:user_id;primaryKey"`
	AddedAt time.Time `json:"added_at" gorm:"column:added_at"`
}

func (Member) TableName() string {
	return "team_members"
}

type CreateTeamDTO struct {
	Name   string `json:"name"`
	LeadID *int64 `json:"lead_id,omitempty"`
}

func (d CreateTeamDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if len(d.Name) > 120 {
		return errors.New("name must not exceed 120 characters")
	}
	return nil
}

type UpdateTeamDTO struct {
	Name   *string `json:"name,omitempty"`
	LeadID *int64  `json:"lead_id,omitempty"`
}

func (d UpdateTeamDTO) Validate() error {
	if d.Name == nil && d.LeadID == nil {
		return errors.New("nothing to update")
	}
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return errors.New("name must not be empty")
	}
	return nil
}
