package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
)

// TimeEntryRepository implements the timeentry.Repository interface using GORM
type TimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB) timeentry.Repository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *timeentry.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, companyID, id int64) (*timeentry.TimeEntry, error) {
	var entry timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListForUserAndDay returns every entry one user logged on one calendar
// day, ordered by start time with open entries last.
func (r *TimeEntryRepository) ListForUserAndDay(ctx context.Context, companyID, userID int64, day time.Time) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ? AND entry_date = ?", companyID, userID, day.Format("2006-01-02")).
		Order("start_minute ASC NULLS LAST").
		Find(&entries).Error
	return entries, err
}

func (r *TimeEntryRepository) ListForUser(ctx context.Context, companyID, userID int64, limit, offset int) ([]*timeentry.TimeEntry, error) {
	var entries []*timeentry.TimeEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Order("entry_date DESC, start_minute ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *timeentry.TimeEntry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, companyID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&timeentry.TimeEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrEntryNotFound
	}
	return nil
}
