// Package authz is the single permission gate consulted by every service.
// Role checks are never scattered as ad-hoc string comparisons; all
// allow/deny decisions funnel through Gate.Check.
package authz

import (
	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/obs"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource tags, shared between the gate, routers and audit records.
const (
	ResourceTimeEntries = "timeentries"
	ResourceProjects    = "projects"
	ResourceTeams       = "teams"
	ResourceHolidays    = "holidays"
	ResourceCompanies   = "companies"
	ResourceMessages    = "messages"
	ResourceUsers       = "users"
	ResourceClients     = "clients"
)

// Scope narrows a check to a tenant and, optionally, a resource owner.
// CompanyID zero means the caller could not establish a tenant for the
// target; the gate fails closed on that.
type Scope struct {
	CompanyID   int64
	OwnerUserID int64
}

type pair struct {
	resource string
	action   Action
}

// memberAllowed is the allow-list for regular members. Anything not listed
// here is denied for the member role.
var memberAllowed = map[pair]bool{
	{ResourceTimeEntries, ActionCreate}: true,
	{ResourceTimeEntries, ActionRead}:   true,
	{ResourceTimeEntries, ActionUpdate}: true,
	{ResourceTimeEntries, ActionDelete}: true,
	{ResourceProjects, ActionRead}:      true,
	{ResourceTeams, ActionRead}:         true,
	{ResourceHolidays, ActionRead}:      true,
	{ResourceCompanies, ActionRead}:     true,
	{ResourceMessages, ActionRead}:      true,
	{ResourceMessages, ActionCreate}:    true,
	{ResourceUsers, ActionRead}:         true,
}

// clientAllowed restricts portal users to read-only views of their own
// client data.
var clientAllowed = map[pair]bool{
	{ResourceProjects, ActionRead}: true,
	{ResourceClients, ActionRead}:  true,
	{ResourceMessages, ActionRead}: true,
}

type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Check decides whether identity may perform action on resource within
// scope. It is a pure decision: no side effects, no caching. Callers audit
// accepted mutations separately.
func (g *Gate) Check(identity *auth.Identity, resource string, action Action, scope Scope) error {
	if identity == nil {
		return internal.ErrInvalidToken
	}
	if !identity.IsActive {
		return internal.ErrUserInactive
	}

	// Superadmin bypasses tenant and allow-list checks. This is the only
	// identity allowed to operate without a company scope.
	if identity.Role == auth.RoleSuperAdmin {
		return nil
	}

	if identity.CompanyID == 0 {
		return internal.ErrMissingTenant
	}
	if scope.CompanyID == 0 {
		// Target tenant unknown: fail closed rather than widen the query.
		return internal.ErrMissingTenant
	}
	if scope.CompanyID != identity.CompanyID {
		return internal.ErrTenantMismatch
	}

	switch identity.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleMember:
		if memberAllowed[pair{resource, action}] {
			return g.checkOwnership(identity, resource, action, scope)
		}
	case auth.RoleClient:
		if clientAllowed[pair{resource, action}] {
			return nil
		}
	}

	obs.PermissionDenied(resource)
	return internal.ErrPermissionDenied
}

// checkOwnership keeps members inside their own records for mutations on
// owned resources. Reads within the tenant are allowed.
func (g *Gate) checkOwnership(identity *auth.Identity, resource string, action Action, scope Scope) error {
	if resource != ResourceTimeEntries || action == ActionRead {
		return nil
	}
	if scope.OwnerUserID != 0 && scope.OwnerUserID != identity.UserID {
		return internal.ErrPermissionDenied
	}
	return nil
}
