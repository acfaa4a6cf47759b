package timeentry_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog-management/internal/project"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
)

func TestTimeEntry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TimeEntry Suite")
}

func minutePtr(hhmm string) *int {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	m := t.Hour()*60 + t.Minute()
	return &m
}

var _ = Describe("Validator", func() {
	var (
		validator *timeentry.Validator
		activeProj *project.Project
		now       time.Time
		day       time.Time
	)

	BeforeEach(func() {
		validator = timeentry.NewValidator(timeentry.ValidatorConfig{
			MaxHoursPerEntry:  24,
			DailyHoursCeiling: 12,
			FutureGrace:       24 * time.Hour,
			DurationTolerance: 0.05,
		})
		activeProj = &project.Project{ID: 1, CompanyID: 1, Code: "ACME", IsActive: true}
		now = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
		day = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	})

	draft := func(mutate func(*timeentry.Draft)) timeentry.Draft {
		d := timeentry.Draft{
			UserID:    10,
			ProjectID: 1,
			Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Hours:     4,
		}
		if mutate != nil {
			mutate(&d)
		}
		return d
	}

	Describe("project context", func() {
		It("rejects drafts against an inactive project regardless of other fields", func() {
			inactive := &project.Project{ID: 1, CompanyID: 1, IsActive: false}
			result := validator.Validate(draft(nil), inactive, nil, now)

			Expect(result.Valid).To(BeFalse())
			Expect(result.Errors).To(ContainElement(timeentry.CodeProjectInactive))
		})

		It("rejects drafts with no project context", func() {
			result := validator.Validate(draft(nil), nil, nil, now)

			Expect(result.Valid).To(BeFalse())
			Expect(result.Errors).To(ContainElement(timeentry.CodeProjectInactive))
		})
	})

	Describe("hours bounds", func() {
		It("rejects zero hours", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) { d.Hours = 0 }), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeInvalidHours))
		})

		It("rejects hours above the per-entry maximum", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) { d.Hours = 25 }), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeInvalidHours))
		})
	})

	Describe("time range consistency", func() {
		It("rejects end before start", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("14:00")
				d.EndMinute = minutePtr("09:00")
				d.Hours = 5
			}), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeTimeMismatch))
		})

		It("rejects a range whose duration disagrees with the declared hours", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("09:00")
				d.EndMinute = minutePtr("13:00")
				d.Hours = 6
			}), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeTimeMismatch))
		})

		It("accepts a range matching hours within tolerance", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("09:00")
				d.EndMinute = minutePtr("13:00")
				d.Hours = 4
			}), activeProj, nil, now)
			Expect(result.Valid).To(BeTrue())
		})

		It("rejects a half-specified range", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("09:00")
			}), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeTimeMismatch))
		})
	})

	Describe("overlap detection", func() {
		existing := func() []*timeentry.TimeEntry {
			return []*timeentry.TimeEntry{
				{
					ID:          1,
					UserID:      10,
					ProjectID:   1,
					EntryDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
					StartMinute: minutePtr("09:00"),
					EndMinute:   minutePtr("13:00"),
					Hours:       4,
				},
			}
		}

		It("rejects a draft overlapping an existing range on the same day", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("12:00")
				d.EndMinute = minutePtr("14:00")
				d.Hours = 2
			}), activeProj, existing(), now)

			Expect(result.Valid).To(BeFalse())
			Expect(result.Errors).To(ContainElement(timeentry.CodeOverlappingEntry))
		})

		It("accepts a draft starting exactly when the existing range ends", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("13:00")
				d.EndMinute = minutePtr("17:00")
				d.Hours = 4
			}), activeProj, existing(), now)

			Expect(result.Valid).To(BeTrue())
			Expect(result.Errors).To(BeEmpty())
		})

		It("skips overlap checks for entries without explicit ranges", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) { d.Hours = 3 }), activeProj, existing(), now)
			Expect(result.Errors).NotTo(ContainElement(timeentry.CodeOverlappingEntry))
		})
	})

	Describe("daily ceiling", func() {
		tenHours := func() []*timeentry.TimeEntry {
			return []*timeentry.TimeEntry{
				{ID: 1, UserID: 10, EntryDate: day, Hours: 6},
				{ID: 2, UserID: 10, EntryDate: day, Hours: 4},
			}
		}

		It("warns without blocking in soft mode", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) { d.Hours = 3 }), activeProj, tenHours(), now)

			Expect(result.Valid).To(BeTrue())
			Expect(result.Warnings).To(ContainElement(timeentry.CodeDailyLimitExceeded))
		})

		It("blocks with an error when the hard cap is configured", func() {
			hard := timeentry.NewValidator(timeentry.ValidatorConfig{
				MaxHoursPerEntry:  24,
				DailyHoursCeiling: 12,
				HardDailyCap:      true,
				FutureGrace:       24 * time.Hour,
				DurationTolerance: 0.05,
			})

			result := hard.Validate(draft(func(d *timeentry.Draft) { d.Hours = 3 }), activeProj, tenHours(), now)

			Expect(result.Valid).To(BeFalse())
			Expect(result.Errors).To(ContainElement(timeentry.CodeDailyLimitExceeded))
		})
	})

	Describe("future dates", func() {
		It("rejects dates beyond the grace window", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.Date = now.Add(72 * time.Hour)
			}), activeProj, nil, now)
			Expect(result.Errors).To(ContainElement(timeentry.CodeFutureDate))
		})

		It("accepts tomorrow inside the grace window", func() {
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.Date = now.Add(6 * time.Hour)
			}), activeProj, nil, now)
			Expect(result.Errors).NotTo(ContainElement(timeentry.CodeFutureDate))
		})
	})

	Describe("aggregation", func() {
		It("reports every failing rule, not just the first", func() {
			inactive := &project.Project{ID: 1, IsActive: false}
			result := validator.Validate(draft(func(d *timeentry.Draft) {
				d.Hours = 0
				d.Date = now.Add(72 * time.Hour)
			}), inactive, nil, now)

			Expect(result.Errors).To(ContainElements(
				timeentry.CodeProjectInactive,
				timeentry.CodeInvalidHours,
				timeentry.CodeFutureDate,
			))
		})

		It("is idempotent for an unchanged draft", func() {
			d := draft(func(d *timeentry.Draft) {
				d.StartMinute = minutePtr("09:00")
				d.EndMinute = minutePtr("11:00")
				d.Hours = 2
			})
			first := validator.Validate(d, activeProj, nil, now)
			second := validator.Validate(d, activeProj, nil, now)

			Expect(second).To(Equal(first))
		})
	})
})
