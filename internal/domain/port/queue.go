package port

import (
	"context"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
)

// JobQueue is the producer side of the durable video-generation queue.
type JobQueue interface {
	Enqueue(ctx context.Context, job entity.VideoJob) error
}

// JobTracker enforces per-diary mutual exclusion and keeps terminal job
// records for operational inspection (7d after success, 30d after failure).
type JobTracker interface {
	// TryAcquire takes the per-diary execution lock; false means a job for
	// the same diary is already running or queued.
	TryAcquire(ctx context.Context, diaryID uuid.UUID) (bool, error)
	Release(ctx context.Context, diaryID uuid.UUID) error
	RecordOutcome(ctx context.Context, diaryID uuid.UUID, status entity.VideoStatus, errorCode string) error
}
