package project

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"github.com/frahmantamala/worklog-management/internal/core/events"
)

const RouteProjects = "/api/v1/projects"

const entityType = "Project"

type Repository interface {
	Create(ctx context.Context, proj *Project) error
	GetByID(ctx context.Context, companyID, id int64) (*Project, error)
	List(ctx context.Context, companyID int64, activeOnly bool) ([]*Project, error)
	Update(ctx context.Context, proj *Project) error
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

// Service owns project lifecycle. Mutations are admin-only via the gate;
// members and portal clients read.
type Service struct {
	repo        Repository
	gate        PermissionGate
	recorder    Recorder
	invalidator Invalidator
	publisher   Publisher
	logger      *slog.Logger
}

func NewService(repo Repository, gate PermissionGate, recorder Recorder, invalidator Invalidator, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		gate:        gate,
		recorder:    recorder,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *Service) CreateProject(ctx context.Context, identity *auth.Identity, dto CreateProjectDTO) (*Project, error) {
	if err := s.gate.Check(identity, authz.ResourceProjects, authz.ActionCreate, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	proj := &Project{
		CompanyID: identity.CompanyID,
		Code:      dto.Code,
		Name:      dto.Name,
		ClientID:  dto.ClientID,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, internal.NewInternalError("failed to create project", err)
	}

	s.recorder.Record(ctx, audit.OperationCreate, entityType, proj.ID, identity.UserID, identity.CompanyID, proj)
	s.afterMutation(ctx, proj)

	s.logger.Info("project created", "project_id", proj.ID, "code", proj.Code, "company_id", proj.CompanyID)
	return proj, nil
}

func (s *Service) UpdateProject(ctx context.Context, identity *auth.Identity, projectID int64, dto UpdateProjectDTO) (*Project, error) {
	proj, err := s.repo.GetByID(ctx, identity.CompanyID, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceProjects, authz.ActionUpdate, authz.Scope{CompanyID: proj.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.Name != nil {
		proj.Name = *dto.Name
	}
	if dto.IsActive != nil {
		proj.IsActive = *dto.IsActive
	}
	proj.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, proj); err != nil {
		return nil, internal.NewInternalError("failed to update project", err)
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, proj.ID, identity.UserID, identity.CompanyID, proj)
	s.afterMutation(ctx, proj)

	return proj, nil
}

// DeactivateProject retires a project so no new time can be logged
// against it. Existing entries keep their reference.
func (s *Service) DeactivateProject(ctx context.Context, identity *auth.Identity, projectID int64) (*Project, error) {
	inactive := false
	return s.UpdateProject(ctx, identity, projectID, UpdateProjectDTO{IsActive: &inactive})
}

func (s *Service) GetProject(ctx context.Context, identity *auth.Identity, projectID int64) (*Project, error) {
	proj, err := s.repo.GetByID(ctx, identity.CompanyID, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceProjects, authz.ActionRead, authz.Scope{CompanyID: proj.CompanyID}); err != nil {
		return nil, err
	}

	return proj, nil
}

func (s *Service) ListProjects(ctx context.Context, identity *auth.Identity, activeOnly bool) ([]*Project, error) {
	if err := s.gate.Check(identity, authz.ResourceProjects, authz.ActionRead, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, identity.CompanyID, activeOnly)
}

func (s *Service) afterMutation(ctx context.Context, proj *Project) {
	s.invalidator.Invalidate(RouteProjects)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewEntityChangedEvent(events.ProjectChanged, proj.ID, proj.CompanyID)); err != nil {
			s.logger.Warn("event publish failed", "event_type", events.ProjectChanged, "project_id", proj.ID, "error", err)
		}
	}
}
