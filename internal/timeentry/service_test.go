package timeentry_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"github.com/frahmantamala/worklog-management/internal/company"
	"github.com/frahmantamala/worklog-management/internal/project"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
)

type mockEntryRepo struct {
	entries    map[int64]*timeentry.TimeEntry
	nextID     int64
	createErr  error
	sameDay    []*timeentry.TimeEntry
	sameDayErr error
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[int64]*timeentry.TimeEntry), nextID: 1}
}

func (m *mockEntryRepo) Create(_ context.Context, entry *timeentry.TimeEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	entry.ID = m.nextID
	m.nextID++
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, companyID, id int64) (*timeentry.TimeEntry, error) {
	entry, ok := m.entries[id]
	if !ok || entry.CompanyID != companyID {
		return nil, internal.ErrEntryNotFound
	}
	return entry, nil
}

func (m *mockEntryRepo) ListForUserAndDay(_ context.Context, _, _ int64, _ time.Time) ([]*timeentry.TimeEntry, error) {
	if m.sameDayErr != nil {
		return nil, m.sameDayErr
	}
	return m.sameDay, nil
}

func (m *mockEntryRepo) ListForUser(_ context.Context, companyID, userID int64, _, _ int) ([]*timeentry.TimeEntry, error) {
	var out []*timeentry.TimeEntry
	for _, entry := range m.entries {
		if entry.CompanyID == companyID && entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *mockEntryRepo) Update(_ context.Context, entry *timeentry.TimeEntry) error {
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockEntryRepo) Delete(_ context.Context, _, id int64) error {
	delete(m.entries, id)
	return nil
}

type mockProjectGetter struct {
	projects map[int64]*project.Project
}

func (m *mockProjectGetter) GetByID(_ context.Context, companyID, id int64) (*project.Project, error) {
	proj, ok := m.projects[id]
	if !ok || proj.CompanyID != companyID {
		return nil, internal.ErrProjectNotFound
	}
	return proj, nil
}

type recordedCall struct {
	Op         audit.Operation
	EntityType string
	EntityID   int64
	ActorID    int64
	CompanyID  int64
}

type mockRecorder struct {
	calls []recordedCall
}

func (m *mockRecorder) Record(_ context.Context, op audit.Operation, entityType string, entityID, actorID, companyID int64, _ any) {
	m.calls = append(m.calls, recordedCall{op, entityType, entityID, actorID, companyID})
}

type mockInvalidator struct {
	routes []string
}

func (m *mockInvalidator) Invalidate(route string) {
	m.routes = append(m.routes, route)
}

type mockCompanyGetter struct {
	company *company.Company
}

func (m *mockCompanyGetter) GetByID(_ context.Context, _ int64) (*company.Company, error) {
	return m.company, nil
}

var _ = Describe("TimeEntry Service", func() {
	var (
		repo        *mockEntryRepo
		projects    *mockProjectGetter
		companies   *mockCompanyGetter
		recorder    *mockRecorder
		invalidator *mockInvalidator
		service     *timeentry.Service
		member      *auth.Identity
		admin       *auth.Identity
	)

	strPtr := func(s string) *string { return &s }

	BeforeEach(func() {
		repo = newMockEntryRepo()
		projects = &mockProjectGetter{projects: map[int64]*project.Project{
			10: {ID: 10, CompanyID: 1, Code: "ACME-01", Name: "Acme Website", IsActive: true},
			11: {ID: 11, CompanyID: 1, Code: "ACME-02", Name: "Retired", IsActive: false},
		}}
		companies = &mockCompanyGetter{company: &company.Company{ID: 1, Name: "Acme", IsActive: true}}
		recorder = &mockRecorder{}
		invalidator = &mockInvalidator{}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		validator := timeentry.NewValidator(timeentry.ValidatorConfig{
			MaxHoursPerEntry:  24,
			DailyHoursCeiling: 12,
			DurationTolerance: 0.01,
		})
		service = timeentry.NewService(repo, projects, companies, authz.NewGate(), validator, recorder, invalidator, nil, logger)

		member = &auth.Identity{UserID: 7, Role: auth.RoleMember, CompanyID: 1, IsActive: true}
		admin = &auth.Identity{UserID: 2, Role: auth.RoleAdmin, CompanyID: 1, IsActive: true}
	})

	Describe("SaveTimeEntry", func() {
		It("persists a valid entry and records a CREATE audit record", func() {
			result, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				StartTime: strPtr("09:00"),
				EndTime:   strPtr("13:00"),
				Hours:     4,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Entry.ID).NotTo(BeZero())
			Expect(result.Entry.CompanyID).To(Equal(int64(1)))
			Expect(result.Entry.UserID).To(Equal(int64(7)))
			Expect(result.Warnings).To(BeEmpty())

			Expect(recorder.calls).To(HaveLen(1))
			Expect(recorder.calls[0].Op).To(Equal(audit.OperationCreate))
			Expect(recorder.calls[0].EntityType).To(Equal("TimeEntry"))
			Expect(recorder.calls[0].EntityID).To(Equal(result.Entry.ID))
			Expect(recorder.calls[0].ActorID).To(Equal(int64(7)))

			Expect(invalidator.routes).To(ContainElement(timeentry.RouteTimesheet))
		})

		It("returns warnings alongside the saved entry when the ceiling is crossed softly", func() {
			repo.sameDay = []*timeentry.TimeEntry{
				{ID: 50, CompanyID: 1, UserID: 7, ProjectID: 10, Hours: 10},
			}

			result, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     3,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Warnings).NotTo(BeEmpty())
			Expect(recorder.calls).To(HaveLen(1))
		})

		It("honors a raised company ceiling and skips the warning", func() {
			raised := 16.0
			companies.company.DailyHoursCeiling = &raised
			repo.sameDay = []*timeentry.TimeEntry{
				{ID: 50, CompanyID: 1, UserID: 7, ProjectID: 10, Hours: 10},
			}

			result, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     3,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Warnings).To(BeEmpty())
		})

		It("rejects a member logging time for another user", func() {
			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				UserID:    99,
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})

			Expect(err).To(MatchError(internal.ErrPermissionDenied))
			Expect(recorder.calls).To(BeEmpty())
			Expect(invalidator.routes).To(BeEmpty())
		})

		It("allows an admin to log time on behalf of a member", func() {
			result, err := service.SaveTimeEntry(context.Background(), admin, timeentry.CreateTimeEntryDTO{
				UserID:    7,
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Entry.UserID).To(Equal(int64(7)))
			Expect(recorder.calls[0].ActorID).To(Equal(int64(2)))
		})

		It("rejects a client identity outright", func() {
			client := &auth.Identity{UserID: 40, Role: auth.RoleClient, CompanyID: 1, IsActive: true}

			_, err := service.SaveTimeEntry(context.Background(), client, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})

			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("fails with PROJECT_NOT_FOUND for an unknown project", func() {
			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 999,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})

			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})

		It("aggregates rule violations into one validation error", func() {
			repo.sameDay = []*timeentry.TimeEntry{
				{ID: 51, CompanyID: 1, UserID: 7, ProjectID: 10, Hours: 2,
					StartMinute: minutePtr("09:00"), EndMinute: minutePtr("11:00")},
			}

			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 11,
				Date:      time.Now().Format("2006-01-02"),
				StartTime: strPtr("10:00"),
				EndTime:   strPtr("14:00"),
				Hours:     4,
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			codes := make([]string, 0, len(details.Errors))
			for _, ve := range details.Errors {
				codes = append(codes, ve.Code)
			}
			Expect(codes).To(ContainElements(timeentry.CodeProjectInactive, timeentry.CodeOverlappingEntry))

			Expect(recorder.calls).To(BeEmpty())
		})

		It("maps a duplicate key violation to an overlap conflict", func() {
			repo.createErr = gorm.ErrDuplicatedKey

			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				StartTime: strPtr("09:00"),
				EndTime:   strPtr("13:00"),
				Hours:     4,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeOverlappingEntry))
		})

		It("does not audit or invalidate when persistence fails", func() {
			repo.createErr = errors.New("connection reset")

			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})

			Expect(err).To(HaveOccurred())
			Expect(recorder.calls).To(BeEmpty())
			Expect(invalidator.routes).To(BeEmpty())
		})
	})

	Describe("UpdateTimeEntry", func() {
		var existingID int64

		BeforeEach(func() {
			result, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				StartTime: strPtr("09:00"),
				EndTime:   strPtr("13:00"),
				Hours:     4,
			})
			Expect(err).NotTo(HaveOccurred())
			existingID = result.Entry.ID
			recorder.calls = nil
			invalidator.routes = nil
		})

		It("re-validates and records an UPDATE audit record", func() {
			result, err := service.UpdateTimeEntry(context.Background(), member, existingID, timeentry.UpdateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				StartTime: strPtr("10:00"),
				EndTime:   strPtr("15:00"),
				Hours:     5,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Entry.Hours).To(Equal(5.0))
			Expect(recorder.calls).To(HaveLen(1))
			Expect(recorder.calls[0].Op).To(Equal(audit.OperationUpdate))
		})

		It("rejects a different member updating someone else's entry", func() {
			other := &auth.Identity{UserID: 8, Role: auth.RoleMember, CompanyID: 1, IsActive: true}

			_, err := service.UpdateTimeEntry(context.Background(), other, existingID, timeentry.UpdateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     2,
			})

			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("returns not found for an entry in another company", func() {
			foreign := &auth.Identity{UserID: 3, Role: auth.RoleAdmin, CompanyID: 2, IsActive: true}

			_, err := service.UpdateTimeEntry(context.Background(), foreign, existingID, timeentry.UpdateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     2,
			})

			Expect(err).To(MatchError(internal.ErrEntryNotFound))
		})
	})

	Describe("DeleteTimeEntry", func() {
		It("records a DELETE audit record with the final snapshot", func() {
			result, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})
			Expect(err).NotTo(HaveOccurred())
			recorder.calls = nil

			Expect(service.DeleteTimeEntry(context.Background(), member, result.Entry.ID)).To(Succeed())

			Expect(recorder.calls).To(HaveLen(1))
			Expect(recorder.calls[0].Op).To(Equal(audit.OperationDelete))

			_, err = service.GetTimeEntry(context.Background(), member, result.Entry.ID)
			Expect(err).To(MatchError(internal.ErrEntryNotFound))
		})
	})

	Describe("ListTimeEntries", func() {
		It("denies a member listing another user's entries", func() {
			_, err := service.ListTimeEntries(context.Background(), member, 99, 20, 0)
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("allows an admin to list a member's entries", func() {
			_, err := service.SaveTimeEntry(context.Background(), member, timeentry.CreateTimeEntryDTO{
				ProjectID: 10,
				Date:      time.Now().Format("2006-01-02"),
				Hours:     4,
			})
			Expect(err).NotTo(HaveOccurred())

			entries, err := service.ListTimeEntries(context.Background(), admin, 7, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
	})
})
