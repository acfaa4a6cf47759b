package team

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
)

const RouteTeams = "/api/v1/teams"

const entityType = "Team"

type Repository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, companyID, id int64) (*Team, error)
	List(ctx context.Context, companyID int64) ([]*Team, error)
	Update(ctx context.Context, team *Team) error
	Delete(ctx context.Context, companyID, id int64) error
	AddMember(ctx context.Context, member *Member) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	ListMembers(ctx context.Context, teamID int64) ([]Member, error)
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

func (s *Service) CreateTeam(ctx context.Context, identity *auth.Identity, dto CreateTeamDTO) (*Team, error) {
	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionCreate, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	team := &Team{
		CompanyID: identity.CompanyID,
		Name:      dto.Name,
		LeadID:    dto.LeadID,
	}

	if err := s.repo.Create(ctx, team); err != nil {
		return nil, internal.NewInternalError("failed to create team", err)
	}

	s.recorder.Record(ctx, audit.OperationCreate, entityType, team.ID, identity.UserID, identity.CompanyID, team)
	s.invalidator.Invalidate(RouteTeams)

	s.logger.Info("team created", "team_id", team.ID, "company_id", team.CompanyID)
	return team, nil
}

func (s *Service) UpdateTeam(ctx context.Context, identity *auth.Identity, teamID int64, dto UpdateTeamDTO) (*Team, error) {
	team, err := s.repo.GetByID(ctx, identity.CompanyID, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionUpdate, authz.Scope{CompanyID: team.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.Name != nil {
		team.Name = *dto.Name
	}
	if dto.LeadID != nil {
		team.LeadID = dto.LeadID
	}
	team.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, team); err != nil {
		return nil, internal.NewInternalError("failed to update team", err)
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, team.ID, identity.UserID, identity.CompanyID, team)
	s.invalidator.Invalidate(RouteTeams)

	return team, nil
}

func (s *Service) DeleteTeam(ctx context.Context, identity *auth.Identity, teamID int64) error {
	team, err := s.repo.GetByID(ctx, identity.CompanyID, teamID)
	if err != nil {
		return err
	}

	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionDelete, authz.Scope{CompanyID: team.CompanyID}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, team.CompanyID, team.ID); err != nil {
		return internal.NewInternalError("failed to delete team", err)
	}

	s.recorder.Record(ctx, audit.OperationDelete, entityType, team.ID, identity.UserID, identity.CompanyID, team)
	s.invalidator.Invalidate(RouteTeams)

	return nil
}

func (s *Service) GetTeam(ctx context.Context, identity *auth.Identity, teamID int64) (*Team, error) {
	team, err := s.repo.GetByID(ctx, identity.CompanyID, teamID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionRead, authz.Scope{CompanyID: team.CompanyID}); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load team members", err)
	}
	team.Members = members

	return team, nil
}

func (s *Service) ListTeams(ctx context.Context, identity *auth.Identity) ([]*Team, error) {
	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionRead, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, identity.CompanyID)
}

func (s *Service) AddMember(ctx context.Context, identity *auth.Identity, teamID, userID int64) error {
	team, err := s.repo.GetByID(ctx, identity.CompanyID, teamID)
	if err != nil {
		return err
	}

	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionUpdate, authz.Scope{CompanyID: team.CompanyID}); err != nil {
		return err
	}

	member := &Member{TeamID: team.ID, UserID: userID, AddedAt: time.Now()}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return internal.NewInternalError("failed to add team member", err)
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, team.ID, identity.UserID, identity.CompanyID, member)
	s.invalidator.Invalidate(RouteTeams)

	return nil
}

func (s *Service) RemoveMember(ctx context.Context, identity *auth.Identity, teamID, userID int64) error {
	team, err := s.repo.GetByID(ctx, identity.CompanyID, teamID)
	if err != nil {
		return err
	}

	if err := s.gate.Check(identity, authz.ResourceTeams, authz.ActionUpdate, authz.Scope{CompanyID: team.CompanyID}); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, team.ID, userID); err != nil {
		return internal.NewInternalError("failed to remove team member", err)
	}

	s.recorder.Record(ctx, audit.OperationUpdate, entityType, team.ID, identity.UserID, identity.CompanyID,
		map[string]int64{"removed_user_id": userID})
	s.invalidator.Invalidate(RouteTeams)

	return nil
}
