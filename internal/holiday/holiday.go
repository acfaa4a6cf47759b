package holiday

import (
	"errors"
	"strings"
	"time"
)

// Holiday is a company-wide non-working day. The calendar is advisory:
// logging time on a holiday is allowed but surfaced to reports.
type Holiday struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CompanyID int64     `json:"company_id" gorm:"column:company_id;not null;uniqueIndex:idx_holidays_company_date"`
	Date      time.Time `json:"date" gorm:"column:holiday_date;type:date;not null;uniqueIndex:idx_holidays_company_date"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

type CreateHolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (d CreateHolidayDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

func (d CreateHolidayDTO) ParsedDate() time.Time {
	t, _ := time.Parse("2006-01-02", d.Date)
	return t
}
