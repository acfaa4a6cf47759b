package company

import (
	"errors"
	"strings"
	"time"
)

// Company is the tenant root. Settings here apply company-wide; per-user
// overrides are out of scope.
type Company struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Timezone  string    `json:"timezone" gorm:"column:timezone;default:UTC"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	// DailyHoursCeiling overrides the configured timesheet ceiling for
	// this company when set.
	DailyHoursCeiling *float64 `json:"daily_hours_ceiling,omitempty" gorm:"column:daily_hours_ceiling"`
}

func (Company) TableName() string {
	return "companies"
}

type UpdateCompanyDTO struct {
	Name              *string  `json:"name,omitempty"`
	Timezone          *string  `json:"timezone,omitempty"`
	DailyHoursCeiling *float64 `json:"daily_hours_ceiling,omitempty"`
}

func (d UpdateCompanyDTO) Validate() error {
	if d.Name == nil && d.Timezone == nil && d.DailyHoursCeiling == nil {
		return errors.New("nothing to update")
	}
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return errors.New("name must not be empty")
	}
	if d.Timezone != nil {
		if _, err := time.LoadLocation(*d.Timezone); err != nil {
			return errors.New("unknown timezone")
		}
	}
	if d.DailyHoursCeiling != nil && (*d.DailyHoursCeiling <= 0 || *d.DailyHoursCeiling > 24) {
		return errors.New("daily hours ceiling must be between 0 and 24")
	}
	return nil
}
