package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/frahmantamala/worklog-management/internal/obs"
)

type Repository interface {
	Append(ctx context.Context, record *Record) error
}

// Recorder persists audit records for accepted mutations. Recording is
// synchronous so the record is durable before the request completes, but a
// recording failure never rolls back the primary write: it is logged and
// swallowed.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record writes one audit record. snapshot is the resulting entity state
// and is stored as JSON; a snapshot that cannot be marshaled is recorded
// as null rather than dropping the record.
func (r *Recorder) Record(ctx context.Context, op Operation, entityType string, entityID, actorID, companyID int64, snapshot any) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		r.logger.Error("audit: snapshot marshal failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err)
		payload = []byte("null")
	}

	record := &Record{
		ID:         ulid.Make().String(),
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		CompanyID:  companyID,
		Snapshot:   string(payload),
		CreatedAt:  time.Now().UTC(),
	}

	if err := r.repo.Append(ctx, record); err != nil {
		// The primary mutation already succeeded; surface the gap to
		// operational logs and keep the request successful.
		r.logger.Error("audit: record append failed",
			"operation", op,
			"entity_type", entityType,
			"entity_id", entityID,
			"actor_id", actorID,
			"error", err)
		obs.AuditAppendFailed()
	}
}
