package authz_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Suite")
}

var _ = Describe("PermissionGate", func() {
	var gate *authz.Gate

	member := &auth.Identity{UserID: 10, Role: auth.RoleMember, CompanyID: 1, IsActive: true}
	admin := &auth.Identity{UserID: 20, Role: auth.RoleAdmin, CompanyID: 1, IsActive: true}
	superadmin := &auth.Identity{UserID: 30, Role: auth.RoleSuperAdmin, CompanyID: 0, IsActive: true}
	client := &auth.Identity{UserID: 40, Role: auth.RoleClient, CompanyID: 1, IsActive: true}

	BeforeEach(func() {
		gate = authz.NewGate()
	})

	Describe("role allow-lists", func() {
		It("allows members to create their own time entries", func() {
			err := gate.Check(member, authz.ResourceTimeEntries, authz.ActionCreate, authz.Scope{CompanyID: 1, OwnerUserID: 10})
			Expect(err).ToNot(HaveOccurred())
		})

		It("denies members creating entries for another user", func() {
			err := gate.Check(member, authz.ResourceTimeEntries, authz.ActionCreate, authz.Scope{CompanyID: 1, OwnerUserID: 99})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("denies members on non-listed resources by default", func() {
			err := gate.Check(member, authz.ResourceTeams, authz.ActionCreate, authz.Scope{CompanyID: 1})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})

		It("allows admins any action within their company", func() {
			err := gate.Check(admin, authz.ResourceTeams, authz.ActionDelete, authz.Scope{CompanyID: 1})
			Expect(err).ToNot(HaveOccurred())
		})

		It("denies unknown resources even for admins of another tenant", func() {
			err := gate.Check(admin, "reports", authz.ActionRead, authz.Scope{CompanyID: 2})
			Expect(err).To(MatchError(internal.ErrTenantMismatch))
		})
	})

	Describe("client portal identities", func() {
		It("denies clients every internal-staff resource", func() {
			staffOnly := []string{
				authz.ResourceTimeEntries,
				authz.ResourceTeams,
				authz.ResourceHolidays,
				authz.ResourceUsers,
				authz.ResourceCompanies,
			}
			for _, resource := range staffOnly {
				err := gate.Check(client, resource, authz.ActionRead, authz.Scope{CompanyID: 1})
				Expect(err).To(HaveOccurred(), "resource %s should be denied", resource)
			}
		})

		It("denies clients all mutations", func() {
			for _, action := range []authz.Action{authz.ActionCreate, authz.ActionUpdate, authz.ActionDelete} {
				err := gate.Check(client, authz.ResourceProjects, action, authz.Scope{CompanyID: 1})
				Expect(err).To(MatchError(internal.ErrPermissionDenied))
			}
		})

		It("allows clients read-only access to their projects", func() {
			err := gate.Check(client, authz.ResourceProjects, authz.ActionRead, authz.Scope{CompanyID: 1})
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("tenant isolation", func() {
		It("rejects cross-company scope for every non-superadmin role", func() {
			for _, identity := range []*auth.Identity{member, admin, client} {
				err := gate.Check(identity, authz.ResourceProjects, authz.ActionRead, authz.Scope{CompanyID: 2})
				Expect(err).To(MatchError(internal.ErrTenantMismatch))
			}
		})

		It("lets superadmin cross tenants", func() {
			err := gate.Check(superadmin, authz.ResourceProjects, authz.ActionDelete, authz.Scope{CompanyID: 2})
			Expect(err).ToNot(HaveOccurred())
		})

		It("fails closed when the identity has no company scope", func() {
			orphan := &auth.Identity{UserID: 50, Role: auth.RoleMember, CompanyID: 0, IsActive: true}
			err := gate.Check(orphan, authz.ResourceTimeEntries, authz.ActionRead, authz.Scope{CompanyID: 1})
			Expect(err).To(MatchError(internal.ErrMissingTenant))
		})

		It("fails closed when the target scope has no company", func() {
			err := gate.Check(member, authz.ResourceTimeEntries, authz.ActionRead, authz.Scope{})
			Expect(err).To(MatchError(internal.ErrMissingTenant))
		})
	})

	Describe("inactive identities", func() {
		It("denies deactivated users regardless of role", func() {
			inactive := &auth.Identity{UserID: 60, Role: auth.RoleAdmin, CompanyID: 1, IsActive: false}
			err := gate.Check(inactive, authz.ResourceProjects, authz.ActionRead, authz.Scope{CompanyID: 1})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})
})
