package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog-management/internal/audit"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

type mockAuditRepository struct {
	records     []*audit.Record
	appendError error
}

func (m *mockAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	if m.appendError != nil {
		return m.appendError
	}
	m.records = append(m.records, record)
	return nil
}

var _ = Describe("Recorder", func() {
	var (
		recorder *audit.Recorder
		repo     *mockAuditRepository
	)

	BeforeEach(func() {
		repo = &mockAuditRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		recorder = audit.NewRecorder(repo, logger)
	})

	It("persists a record with operation, actor and snapshot", func() {
		snapshot := map[string]any{"id": 7, "hours": 4.0}

		recorder.Record(context.Background(), audit.OperationCreate, "TimeEntry", 7, 10, 1, snapshot)

		Expect(repo.records).To(HaveLen(1))
		record := repo.records[0]
		Expect(record.Operation).To(Equal(audit.OperationCreate))
		Expect(record.EntityType).To(Equal("TimeEntry"))
		Expect(record.EntityID).To(Equal(int64(7)))
		Expect(record.ActorID).To(Equal(int64(10)))
		Expect(record.CompanyID).To(Equal(int64(1)))
		Expect(record.ID).To(HaveLen(26))
		Expect(record.Snapshot).To(ContainSubstring(`"hours":4`))
		Expect(record.CreatedAt).NotTo(BeZero())
	})

	It("assigns a distinct id per record", func() {
		recorder.Record(context.Background(), audit.OperationCreate, "Team", 1, 10, 1, nil)
		recorder.Record(context.Background(), audit.OperationDelete, "Team", 1, 10, 1, nil)

		Expect(repo.records).To(HaveLen(2))
		Expect(repo.records[0].ID).NotTo(Equal(repo.records[1].ID))
	})

	It("does not panic or propagate when the sink fails", func() {
		repo.appendError = errors.New("sink unavailable")

		Expect(func() {
			recorder.Record(context.Background(), audit.OperationUpdate, "Project", 3, 10, 1, nil)
		}).NotTo(Panic())
		Expect(repo.records).To(BeEmpty())
	})

	It("records unmarshalable snapshots as null", func() {
		recorder.Record(context.Background(), audit.OperationCreate, "TimeEntry", 1, 10, 1, make(chan int))

		Expect(repo.records).To(HaveLen(1))
		Expect(repo.records[0].Snapshot).To(Equal("null"))
	})
})
