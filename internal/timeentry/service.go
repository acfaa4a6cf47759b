package timeentry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"github.com/frahmantamala/worklog-management/internal/company"
	"github.com/frahmantamala/worklog-management/internal/core/events"
	"github.com/frahmantamala/worklog-management/internal/obs"
	"github.com/frahmantamala/worklog-management/internal/project"
	"gorm.io/gorm"
)

// RouteTimesheet is the cache route invalidated after entry mutations.
const RouteTimesheet = "/api/v1/timesheet/entries"

const entityType = "TimeEntry"

// Repository defines the data access methods for time entries. Every
// query is tenant-scoped by companyID.
type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	GetByID(ctx context.Context, companyID, id int64) (*TimeEntry, error)
	ListForUserAndDay(ctx context.Context, companyID, userID int64, day time.Time) ([]*TimeEntry, error)
	ListForUser(ctx context.Context, companyID, userID int64, limit, offset int) ([]*TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) error
	Delete(ctx context.Context, companyID, id int64) error
}

// ProjectGetter supplies the read-only project context for validation.
type ProjectGetter interface {
	GetByID(ctx context.Context, companyID, id int64) (*project.Project, error)
}

// CompanyGetter supplies company settings for the daily ceiling override.
// Optional: a nil getter means the configured ceiling always applies.
type CompanyGetter interface {
	GetByID(ctx context.Context, id int64) (*company.Company, error)
}

type PermissionGate interface {
	Check(identity *auth.Identity, resource string, action authz.Action, scope authz.Scope) error
}

type Recorder interface {
	Record(ctx context.Context, op audit.Operation, entityType string, entityID, actorID, companyID int64, snapshot any)
}

type Invalidator interface {
	Invalidate(route string)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SaveResult is the orchestrator's success outcome: the persisted entry
// plus any non-blocking warnings for the UI.
type SaveResult struct {
	Entry    *TimeEntry `json:"entry"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Service orchestrates time entry mutations: authorize, validate,
// persist, audit, invalidate. Each call is a single pass with no retries.
type Service struct {
	repo        Repository
	projects    ProjectGetter
	companies   CompanyGetter
	gate        PermissionGate
	validator   *Validator
	recorder    Recorder
	invalidator Invalidator
	publisher   Publisher
	logger      *slog.Logger
}

func NewService(repo Repository, projects ProjectGetter, companies CompanyGetter, gate PermissionGate, validator *Validator, recorder Recorder, invalidator Invalidator, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		projects:    projects,
		companies:   companies,
		gate:        gate,
		validator:   validator,
		recorder:    recorder,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger,
	}
}

// SaveTimeEntry runs the full create pipeline for one draft.
func (s *Service) SaveTimeEntry(ctx context.Context, identity *auth.Identity, dto CreateTimeEntryDTO) (*SaveResult, error) {
	targetUser := dto.UserID
	if targetUser == 0 {
		targetUser = identity.UserID
	}

	if err := s.gate.Check(identity, authz.ResourceTimeEntries, authz.ActionCreate, authz.Scope{
		CompanyID:   identity.CompanyID,
		OwnerUserID: targetUser,
	}); err != nil {
		return nil, err
	}

	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	draft, err := dto.ToDraft(identity.UserID)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	result, err := s.runBusinessRules(ctx, identity, draft, 0)
	if err != nil {
		return nil, err
	}

	entry := draft.Entry(identity.CompanyID)
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, s.persistError(err, identity, "create")
	}

	s.recorder.Record(ctx, audit.OperationCreate, entityType, entry.ID, identity.UserID, identity.CompanyID, entry)
	s.afterMutation(ctx, events.TimeEntryCreated, entry)
	obs.EntrySaved()

	s.logger.Info("time entry saved",
		"entry_id", entry.ID,
		"user_id", entry.UserID,
		"project_id", entry.ProjectID,
		"hours", entry.Hours,
		"warnings", result.Warnings)

	return &SaveResult{Entry: entry, Warnings: result.Warnings}, nil
}

// UpdateTimeEntry replaces a stored entry after re-running the same
// pipeline, excluding the entry itself from overlap and ceiling checks.
func (s *Service) UpdateTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64, dto UpdateTimeEntryDTO) (*SaveResult, error) {
	existing, err := s.repo.GetByID(ctx, identity.CompanyID, entryID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceTimeEntries, authz.ActionUpdate, authz.Scope{
		CompanyID:   existing.CompanyID,
		OwnerUserID: existing.UserID,
	}); err != nil {
		return nil, err
	}

	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	draft, err := dto.ToDraft(existing.UserID)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	result, err := s.runBusinessRules(ctx, identity, draft, entryID)
	if err != nil {
		return nil, err
	}

	existing.ProjectID = draft.ProjectID
	existing.EntryDate = draft.Date
	existing.StartMinute = draft.StartMinute
	existing.EndMinute = draft.EndMinute
	existing.Hours = draft.Hours
	existing.Notes = draft.Notes
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.persistError(err, identity, "update")
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, existing.ID, identity.UserID, identity.CompanyID, existing)
	s.afterMutation(ctx, events.TimeEntryUpdated, existing)

	return &SaveResult{Entry: existing, Warnings: result.Warnings}, nil
}

func (s *Service) DeleteTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64) error {
	existing, err := s.repo.GetByID(ctx, identity.CompanyID, entryID)
	if err != nil {
		return err
	}

	if err := s.gate.Check(identity, authz.ResourceTimeEntries, authz.ActionDelete, authz.Scope{
		CompanyID:   existing.CompanyID,
		OwnerUserID: existing.UserID,
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.CompanyID, existing.ID); err != nil {
		return s.persistError(err, identity, "delete")
	}

	s.recorder.Record(ctx, audit.OperationDelete, entityType, existing.ID, identity.UserID, identity.CompanyID, existing)
	s.afterMutation(ctx, events.TimeEntryDeleted, existing)

	return nil
}

func (s *Service) GetTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64) (*TimeEntry, error) {
	entry, err := s.repo.GetByID(ctx, identity.CompanyID, entryID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceTimeEntries, authz.ActionRead, authz.Scope{
		CompanyID:   entry.CompanyID,
		OwnerUserID: entry.UserID,
	}); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListTimeEntries returns the caller's own entries; admins may pass a
// different userID to inspect another member of their company.
func (s *Service) ListTimeEntries(ctx context.Context, identity *auth.Identity, userID int64, limit, offset int) ([]*TimeEntry, error) {
	if userID == 0 {
		userID = identity.UserID
	}
	if userID != identity.UserID && identity.Role != auth.RoleAdmin && identity.Role != auth.RoleSuperAdmin {
		return nil, internal.ErrPermissionDenied
	}

	if err := s.gate.Check(identity, authz.ResourceTimeEntries, authz.ActionRead, authz.Scope{
		CompanyID: identity.CompanyID,
	}); err != nil {
		return nil, err
	}

	return s.repo.ListForUser(ctx, identity.CompanyID, userID, limit, offset)
}

// runBusinessRules loads project context and same-day entries, then runs
// the validator. excludeID removes the entry being replaced on updates.
func (s *Service) runBusinessRules(ctx context.Context, identity *auth.Identity, draft Draft, excludeID int64) (ValidationResult, error) {
	proj, err := s.projects.GetByID(ctx, identity.CompanyID, draft.ProjectID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeNotFound {
			return ValidationResult{}, internal.ErrProjectNotFound
		}
		return ValidationResult{}, internal.NewInternalError("failed to load project", err)
	}

	sameDay, err := s.repo.ListForUserAndDay(ctx, identity.CompanyID, draft.UserID, draft.Date)
	if err != nil {
		return ValidationResult{}, internal.NewInternalError("failed to load existing entries", err)
	}
	if excludeID != 0 {
		filtered := sameDay[:0]
		for _, entry := range sameDay {
			if entry.ID != excludeID {
				filtered = append(filtered, entry)
			}
		}
		sameDay = filtered
	}

	result := s.validator.ValidateWithCeiling(draft, proj, sameDay, time.Now(), s.ceilingFor(ctx, identity.CompanyID))
	if !result.Valid {
		return result, validationFailure(result)
	}
	return result, nil
}

// ceilingFor looks up the company's daily ceiling override. Lookup
// failures fall back to the configured ceiling rather than blocking the
// save.
func (s *Service) ceilingFor(ctx context.Context, companyID int64) *float64 {
	if s.companies == nil {
		return nil
	}
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil || c == nil {
		return nil
	}
	return c.DailyHoursCeiling
}

// persistError converts storage failures into the API error taxonomy. A
// unique constraint violation on the entry range means a concurrent save
// won the overlap race.
func (s *Service) persistError(err error, identity *auth.Identity, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("time range already booked", internal.ErrCodeOverlappingEntry)
	}
	s.logger.Error("time entry persistence failed",
		"operation", op,
		"user_id", identity.UserID,
		"company_id", identity.CompanyID,
		"error", err)
	return internal.NewInternalError("failed to save time entry", err)
}

func (s *Service) afterMutation(ctx context.Context, eventType string, entry *TimeEntry) {
	s.invalidator.Invalidate(RouteTimesheet)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewTimeEntryEvent(eventType, entry.ID, entry.UserID, entry.ProjectID, entry.Hours)); err != nil {
			s.logger.Warn("event publish failed", "event_type", eventType, "entry_id", entry.ID, "error", err)
		}
	}
}

// validationFailure flattens a failed ValidationResult into one AppError
// whose details carry every violated rule code.
func validationFailure(result ValidationResult) *internal.AppError {
	details := internal.ValidationErrors{}
	for _, code := range result.Errors {
		obs.ValidationFailure(code)
		details.Errors = append(details.Errors, internal.ValidationError{
			Message: messageFor(code),
			Code:    code,
		})
	}
	message := "time entry rejected: " + strings.Join(result.Errors, ", ")
	return internal.NewValidationError(message, internal.ErrCodeValidationFailed).WithDetails(details)
}

func messageFor(code string) string {
	switch code {
	case CodeProjectInactive:
		return "project does not exist or is not active"
	case CodeInvalidHours:
		return "hours must be greater than zero and within the per-entry maximum"
	case CodeTimeMismatch:
		return "start/end times are inconsistent with the declared hours"
	case CodeOverlappingEntry:
		return "time range overlaps an existing entry on the same day"
	case CodeDailyLimitExceeded:
		return "daily hours ceiling exceeded"
	case CodeFutureDate:
		return "entry date is too far in the future"
	default:
		return code
	}
}
