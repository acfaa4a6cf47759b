package timeentry

import (
	"math"
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/project"
)

// Validation codes surfaced to callers. Errors block persistence;
// warnings are returned alongside a successful save.
const (
	CodeProjectInactive    = string(internal.ErrCodeProjectInactive)
	CodeInvalidHours       = string(internal.ErrCodeInvalidHours)
	CodeTimeMismatch       = string(internal.ErrCodeTimeMismatch)
	CodeOverlappingEntry   = string(internal.ErrCodeOverlappingEntry)
	CodeDailyLimitExceeded = string(internal.ErrCodeDailyLimitExceeded)
	CodeFutureDate         = string(internal.ErrCodeFutureDate)
)

// ValidationResult aggregates every rule outcome for one draft. It is
// produced fresh per call and not mutated afterwards.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidatorConfig mirrors the timesheet section of the app config.
type ValidatorConfig struct {
	MaxHoursPerEntry  float64
	DailyHoursCeiling float64
	HardDailyCap      bool
	FutureGrace       time.Duration
	DurationTolerance float64
}

// Validator applies the time entry business rules. It evaluates every
// rule and returns the aggregate; it never stops at the first failure, so
// callers can report all problems at once. This is a fast-path check: the
// database range constraint remains the authoritative overlap guard.
type Validator struct {
	cfg ValidatorConfig
}

func NewValidator(cfg ValidatorConfig) *Validator {
	if cfg.MaxHoursPerEntry <= 0 {
		cfg.MaxHoursPerEntry = 24
	}
	if cfg.DailyHoursCeiling <= 0 {
		cfg.DailyHoursCeiling = 12
	}
	return &Validator{cfg: cfg}
}

// Validate checks draft against its project context and the user's other
// entries on the same day. existing must already be filtered to the same
// user and date (and exclude the entry being replaced, on updates).
func (v *Validator) Validate(draft Draft, proj *project.Project, existing []*TimeEntry, now time.Time) ValidationResult {
	return v.ValidateWithCeiling(draft, proj, existing, now, nil)
}

// ValidateWithCeiling is Validate with a per-company daily ceiling
// override. A nil override falls back to the configured ceiling.
func (v *Validator) ValidateWithCeiling(draft Draft, proj *project.Project, existing []*TimeEntry, now time.Time, ceilingOverride *float64) ValidationResult {
	var result ValidationResult

	if proj == nil || !proj.IsActive {
		result.Errors = append(result.Errors, CodeProjectInactive)
	}

	if draft.Hours <= 0 || draft.Hours > v.cfg.MaxHoursPerEntry {
		result.Errors = append(result.Errors, CodeInvalidHours)
	}

	if code := v.checkRange(draft); code != "" {
		result.Errors = append(result.Errors, code)
	}

	if v.overlaps(draft, existing) {
		result.Errors = append(result.Errors, CodeOverlappingEntry)
	}

	ceiling := v.cfg.DailyHoursCeiling
	if ceilingOverride != nil && *ceilingOverride > 0 {
		ceiling = *ceilingOverride
	}
	total := draft.Hours
	for _, entry := range existing {
		total += entry.Hours
	}
	if total > ceiling {
		if v.cfg.HardDailyCap {
			result.Errors = append(result.Errors, CodeDailyLimitExceeded)
		} else {
			result.Warnings = append(result.Warnings, CodeDailyLimitExceeded)
		}
	}

	if draft.Date.After(now.Add(v.cfg.FutureGrace)) {
		result.Errors = append(result.Errors, CodeFutureDate)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// checkRange validates the optional explicit time range against the
// declared hours.
func (v *Validator) checkRange(draft Draft) string {
	if draft.StartMinute == nil && draft.EndMinute == nil {
		return ""
	}
	// A half-specified range cannot be checked for order or overlap.
	if draft.StartMinute == nil || draft.EndMinute == nil {
		return CodeTimeMismatch
	}
	if *draft.EndMinute <= *draft.StartMinute {
		return CodeTimeMismatch
	}

	duration := float64(*draft.EndMinute-*draft.StartMinute) / 60.0
	if math.Abs(duration-draft.Hours) > v.cfg.DurationTolerance {
		return CodeTimeMismatch
	}
	return ""
}

// overlaps reports whether the draft's range intersects any existing
// entry's range. Entries without an explicit range never participate in
// overlap detection.
func (v *Validator) overlaps(draft Draft, existing []*TimeEntry) bool {
	if !draft.HasRange() || *draft.EndMinute <= *draft.StartMinute {
		return false
	}
	for _, entry := range existing {
		if !entry.HasRange() {
			continue
		}
		if *draft.StartMinute < *entry.EndMinute && *entry.StartMinute < *draft.EndMinute {
			return true
		}
	}
	return false
}
