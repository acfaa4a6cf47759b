package holiday

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"gorm.io/gorm"
)

const RouteHolidays = "/api/v1/holidays"

const entityType = "Holiday"

type Repository interface {
	Create(ctx context.Context, holiday *Holiday) error
	GetByID(ctx context.Context, companyID, id int64) (*Holiday, error)
	ListForYear(ctx context.Context, companyID int64, year int) ([]*Holiday, error)
	Delete(ctx context.Context, companyID, id int64) error
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

type Service struct {
	repo        Repository
	gate        PermissionGate
	recorder    Recorder
	invalidator Invalidator
	logger      *slog.Logger
}

func NewService(repo Repository, gate PermissionGate, recorder Recorder, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		gate:        gate,
		recorder:    recorder,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *Service) CreateHoliday(ctx context.Context, identity *auth.Identity, dto CreateHolidayDTO) (*Holiday, error) {
	if err := s.gate.Check(identity, authz.ResourceHolidays, authz.ActionCreate, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	holiday := &Holiday{
		CompanyID: identity.CompanyID,
		Date:      dto.ParsedDate(),
		Name:      dto.Name,
	}

	if err := s.repo.Create(ctx, holiday); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.NewConflictError("a holiday already exists on that date", internal.ErrCodeValidationFailed)
		}
		return nil, internal.NewInternalError("failed to create holiday", err)
	}

	s.recorder.Record(ctx, audit.OperationCreate, entityType, holiday.ID, identity.UserID, identity.CompanyID, holiday)
	s.invalidator.Invalidate(RouteHolidays)

	s.logger.Info("holiday created", "holiday_id", holiday.ID, "date", dto.Date, "company_id", holiday.CompanyID)
	return holiday, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, identity *auth.Identity, holidayID int64) error {
	holiday, err := s.repo.GetByID(ctx, identity.CompanyID, holidayID)
	if err != nil {
		return err
	}

	if err := s.gate.Check(identity, authz.ResourceHolidays, authz.ActionDelete, authz.Scope{CompanyID: holiday.CompanyID}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, holiday.CompanyID, holiday.ID); err != nil {
		return internal.NewInternalError("failed to delete holiday", err)
	}

	s.recorder.Record(ctx, audit.OperationDelete, entityType, holiday.ID, identity.UserID, identity.CompanyID, holiday)
	s.invalidator.Invalidate(RouteHolidays)

	return nil
}

func (s *Service) ListHolidays(ctx context.Context, identity *auth.Identity, year int) ([]*Holiday, error) {
	if err := s.gate.Check(identity, authz.ResourceHolidays, authz.ActionRead, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	return s.repo.ListForYear(ctx, identity.CompanyID, year)
}
