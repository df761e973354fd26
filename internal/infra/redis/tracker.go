package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Retention windows for terminal job records, kept for operational
// inspection.
const (
	successRetention = 7 * 24 * time.Hour
	failureRetention = 30 * 24 * time.Hour
)

// JobTracker keys the queue on diary id: a SETNX lock gives per-diary mutual
// exclusion, and its expiry doubles as the visibility timeout, so an
// abandoned job becomes eligible again after one full pipeline window.
// Each acquisition stores a random token so a job that outlives the TTL
// cannot release a lock another worker has since taken.
type JobTracker struct {
	client  *goredis.Client
	lockTTL time.Duration
	logger  *zap.Logger
	tokens  sync.Map // diary id -> lock token held by this process
}

func NewJobTracker(client *goredis.Client, lockTTL time.Duration, logger *zap.Logger) *JobTracker {
	return &JobTracker{client: client, lockTTL: lockTTL, logger: logger}
}

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func lockKey(diaryID uuid.UUID) string {
	return "video:job:lock:" + diaryID.String()
}

func recordKey(diaryID uuid.UUID) string {
	return "video:job:record:" + diaryID.String()
}

func (t *JobTracker) TryAcquire(ctx context.Context, diaryID uuid.UUID) (bool, error) {
	token := uuid.NewString()
	ok, err := t.client.SetNX(ctx, lockKey(diaryID), token, t.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire job lock: %w", err)
	}
	if ok {
		t.tokens.Store(diaryID, token)
	}
	return ok, nil
}

func (t *JobTracker) Release(ctx context.Context, diaryID uuid.UUID) error {
	token, ok := t.tokens.LoadAndDelete(diaryID)
	if !ok {
		return nil
	}

	deleted, err := releaseScript.Run(ctx, t.client, []string{lockKey(diaryID)}, token).Int()
	if err != nil {
		return fmt.Errorf("release job lock: %w", err)
	}
	if deleted == 0 {
		// The lock expired and someone else holds it now; leave theirs alone.
		t.logger.Warn("job lock no longer owned at release",
			zap.String("diary_id", diaryID.String()),
		)
	}
	return nil
}

type jobRecord struct {
	Status     entity.VideoStatus `json:"status"`
	ErrorCode  string             `json:"errorCode,omitempty"`
	FinishedAt time.Time          `json:"finishedAt"`
}

// RecordOutcome stores the terminal result with status-dependent TTL:
// succeeded records expire after 7 days, failed ones after 30.
func (t *JobTracker) RecordOutcome(ctx context.Context, diaryID uuid.UUID, status entity.VideoStatus, errorCode string) error {
	record := jobRecord{
		Status:     status,
		ErrorCode:  errorCode,
		FinishedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}

	ttl := successRetention
	if status == entity.VideoStatusFailed {
		ttl = failureRetention
	}

	if err := t.client.Set(ctx, recordKey(diaryID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store job record: %w", err)
	}
	return nil
}
