package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
	timeentryPostgres "github.com/frahmantamala/worklog-management/internal/timeentry/postgres"
)

func TestTimeEntryPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TimeEntry Postgres Suite")
}

var _ = Describe("TimeEntry PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo timeentry.Repository
		ctx  context.Context
	)

	minutePtr := func(m int) *int { return &m }
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	newEntry := func(companyID, userID int64, start, end int, hours float64) *timeentry.TimeEntry {
		return &timeentry.TimeEntry{
			CompanyID:   companyID,
			UserID:      userID,
			ProjectID:   10,
			EntryDate:   day,
			StartMinute: minutePtr(start),
			EndMinute:   minutePtr(end),
			Hours:       hours,
		}
	}

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&timeentry.TimeEntry{})
		Expect(err).NotTo(HaveOccurred())

		repo = timeentryPostgres.NewTimeEntryRepository(db)
		ctx = context.Background()
	})

	Describe("Create and GetByID", func() {
		It("persists an entry and reads it back within the same company", func() {
			entry := newEntry(1, 7, 9*60, 13*60, 4)

			Expect(repo.Create(ctx, entry)).To(Succeed())
			Expect(entry.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(ctx, 1, entry.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UserID).To(Equal(int64(7)))
			Expect(got.Hours).To(Equal(4.0))
			Expect(*got.StartMinute).To(Equal(9 * 60))
		})

		It("does not return entries from another company", func() {
			entry := newEntry(1, 7, 9*60, 13*60, 4)
			Expect(repo.Create(ctx, entry)).To(Succeed())

			_, err := repo.GetByID(ctx, 2, entry.ID)
			Expect(err).To(MatchError(internal.ErrEntryNotFound))
		})
	})

	Describe("ListForUserAndDay", func() {
		It("returns only the user's entries for that day, ordered by start", func() {
			later := newEntry(1, 7, 14*60, 16*60, 2)
			earlier := newEntry(1, 7, 9*60, 13*60, 4)
			otherUser := newEntry(1, 8, 9*60, 13*60, 4)
			otherDay := newEntry(1, 7, 9*60, 13*60, 4)
			otherDay.EntryDate = day.AddDate(0, 0, 1)

			for _, e := range []*timeentry.TimeEntry{later, earlier, otherUser, otherDay} {
				Expect(repo.Create(ctx, e)).To(Succeed())
			}

			entries, err := repo.ListForUserAndDay(ctx, 1, 7, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(*entries[0].StartMinute).To(Equal(9 * 60))
			Expect(*entries[1].StartMinute).To(Equal(14 * 60))
		})

		It("includes entries without a time range", func() {
			open := &timeentry.TimeEntry{
				CompanyID: 1, UserID: 7, ProjectID: 10, EntryDate: day, Hours: 2,
			}
			Expect(repo.Create(ctx, open)).To(Succeed())

			entries, err := repo.ListForUserAndDay(ctx, 1, 7, day)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].StartMinute).To(BeNil())
		})
	})

	Describe("Update", func() {
		It("replaces the mutable fields and bumps updated_at", func() {
			entry := newEntry(1, 7, 9*60, 13*60, 4)
			Expect(repo.Create(ctx, entry)).To(Succeed())
			created := entry.UpdatedAt

			entry.Hours = 5
			entry.EndMinute = minutePtr(14 * 60)
			Expect(repo.Update(ctx, entry)).To(Succeed())

			got, err := repo.GetByID(ctx, 1, entry.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Hours).To(Equal(5.0))
			Expect(*got.EndMinute).To(Equal(14 * 60))
			Expect(got.UpdatedAt).To(BeTemporally(">=", created))
		})
	})

	Describe("Delete", func() {
		It("removes the entry", func() {
			entry := newEntry(1, 7, 9*60, 13*60, 4)
			Expect(repo.Create(ctx, entry)).To(Succeed())

			Expect(repo.Delete(ctx, 1, entry.ID)).To(Succeed())

			_, err := repo.GetByID(ctx, 1, entry.ID)
			Expect(err).To(MatchError(internal.ErrEntryNotFound))
		})

		It("refuses to delete across companies", func() {
			entry := newEntry(1, 7, 9*60, 13*60, 4)
			Expect(repo.Create(ctx, entry)).To(Succeed())

			Expect(repo.Delete(ctx, 2, entry.ID)).To(MatchError(internal.ErrEntryNotFound))

			_, err := repo.GetByID(ctx, 1, entry.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
