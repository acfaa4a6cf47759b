package company

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
)

const RouteCompany = "/api/v1/company"

const entityType = "Company"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Company, error)
	Update(ctx context.Context, company *Company) error
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

// GetCompany returns the caller's own company settings.
func (s *Service) GetCompany(ctx context.Context, identity *auth.Identity) (*Company, error) {
	if err := s.gate.Check(identity, authz.ResourceCompanies, authz.ActionRead, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, identity.CompanyID)
}

func (s *Service) UpdateCompany(ctx context.Context, identity *auth.Identity, dto UpdateCompanyDTO) (*Company, error) {
	if err := s.gate.Check(identity, authz.ResourceCompanies, authz.ActionUpdate, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	company, err := s.repo.GetByID(ctx, identity.CompanyID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		company.Name = *dto.Name
	}
	if dto.Timezone != nil {
		company.Timezone = *dto.Timezone
	}
	if dto.DailyHoursCeiling != nil {
		company.DailyHoursCeiling = dto.DailyHoursCeiling
	}
	company.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, internal.NewInternalError("failed to update company", err)
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, company.ID, identity.UserID, identity.CompanyID, company)
	s.invalidator.Invalidate(RouteCompany)

	s.logger.Info("company settings updated", "company_id", company.ID)
	return company, nil
}
