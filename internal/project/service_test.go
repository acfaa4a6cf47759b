package project_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"github.com/frahmantamala/worklog-management/internal/project"
)

func TestProject(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Suite")
}

type mockProjectRepo struct {
	projects map[int64]*project.Project
	nextID   int64
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[int64]*project.Project), nextID: 1}
}

func (m *mockProjectRepo) Create(_ context.Context, proj *project.Project) error {
	proj.ID = m.nextID
	m.nextID++
	m.projects[proj.ID] = proj
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, companyID, id int64) (*project.Project, error) {
	proj, ok := m.projects[id]
	if !ok || proj.CompanyID != companyID {
		return nil, internal.ErrProjectNotFound
	}
	return proj, nil
}

func (m *mockProjectRepo) List(_ context.Context, companyID int64, activeOnly bool) ([]*project.Project, error) {
	var out []*project.Project
	for _, proj := range m.projects {
		if proj.CompanyID != companyID {
			continue
		}
		if activeOnly && !proj.IsActive {
			continue
		}
		out = append(out, proj)
	}
	return out, nil
}

func (m *mockProjectRepo) Update(_ context.Context, proj *project.Project) error {
	m.projects[proj.ID] = proj
	return nil
}

type auditCall struct {
	Op       audit.Operation
	EntityID int64
}

type mockRecorder struct {
	calls []auditCall
}

func (m *mockRecorder) Record(_ context.Context, op audit.Operation, _ string, entityID, _, _ int64, _ any) {
	m.calls = append(m.calls, auditCall{op, entityID})
}

type mockInvalidator struct {
	routes []string
}

func (m *mockInvalidator) Invalidate(route string) {
	m.routes = append(m.routes, route)
}

var _ = Describe("Project Service", func() {
	var (
		repo        *mockProjectRepo
		recorder    *mockRecorder
		invalidator *mockInvalidator
		service     *project.Service
		admin       *auth.Identity
		member      *auth.Identity
	)

	BeforeEach(func() {
		repo = newMockProjectRepo()
		recorder = &mockRecorder{}
		invalidator = &mockInvalidator{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = project.NewService(repo, authz.NewGate(), recorder, invalidator, nil, logger)

		admin = &auth.Identity{UserID: 2, Role: auth.RoleAdmin, CompanyID: 1, IsActive: true}
		member = &auth.Identity{UserID: 7, Role: auth.RoleMember, CompanyID: 1, IsActive: true}
	})

	Describe("CreateProject", func() {
		It("creates an active project for an admin and audits it", func() {
			proj, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{
				Code: "ACME-01",
				Name: "Acme Website",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(proj.IsActive).To(BeTrue())
			Expect(proj.CompanyID).To(Equal(int64(1)))
			Expect(recorder.calls).To(HaveLen(1))
			Expect(recorder.calls[0].Op).To(Equal(audit.OperationCreate))
			Expect(invalidator.routes).To(ContainElement(project.RouteProjects))
		})

		It("denies a member", func() {
			_, err := service.CreateProject(context.Background(), member, project.CreateProjectDTO{
				Code: "ACME-01",
				Name: "Acme Website",
			})

			Expect(err).To(MatchError(internal.ErrPermissionDenied))
			Expect(recorder.calls).To(BeEmpty())
		})

		It("rejects a blank code", func() {
			_, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{
				Name: "Acme Website",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("DeactivateProject", func() {
		It("retires the project and records an UPDATE", func() {
			proj, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{
				Code: "ACME-01",
				Name: "Acme Website",
			})
			Expect(err).NotTo(HaveOccurred())
			recorder.calls = nil

			updated, err := service.DeactivateProject(context.Background(), admin, proj.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(recorder.calls).To(HaveLen(1))
			Expect(recorder.calls[0].Op).To(Equal(audit.OperationUpdate))
		})
	})

	Describe("ListProjects", func() {
		It("lets members read and honors the active filter", func() {
			_, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{Code: "A", Name: "Active"})
			Expect(err).NotTo(HaveOccurred())
			retired, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{Code: "B", Name: "Retired"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.DeactivateProject(context.Background(), admin, retired.ID)
			Expect(err).NotTo(HaveOccurred())

			all, err := service.ListProjects(context.Background(), member, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			active, err := service.ListProjects(context.Background(), member, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].Code).To(Equal("A"))
		})

		It("never returns another company's projects", func() {
			_, err := service.CreateProject(context.Background(), admin, project.CreateProjectDTO{Code: "A", Name: "Mine"})
			Expect(err).NotTo(HaveOccurred())

			foreign := &auth.Identity{UserID: 3, Role: auth.RoleAdmin, CompanyID: 2, IsActive: true}
			projects, err := service.ListProjects(context.Background(), foreign, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(BeEmpty())
		})
	})
})
