package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRetryFixture() (*RetryVideoUseCase, *fakeRepo, *fakeQueue) {
	repo := newFakeRepo()
	queue := &fakeQueue{}
	producer := NewEnqueueVideoUseCase(queue, repo, zap.NewNop())
	return NewRetryVideoUseCase(repo, producer, zap.NewNop()), repo, queue
}

func failedDiary(userID, retryCount int) *entity.Diary {
	return &entity.Diary{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           "a bad day",
		Content:         "everything failed",
		VideoStatus:     entity.VideoStatusFailed,
		VideoError:      "FAILED_AT_VIDEO_COMPOSING",
		VideoRetryCount: retryCount,
	}
}

func TestRetryResetsAndEnqueues(t *testing.T) {
	uc, repo, queue := newRetryFixture()
	diary := failedDiary(42, 1)
	repo.put(diary)

	updated, err := uc.Execute(context.Background(), 42, diary.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.VideoStatusPending, updated.VideoStatus)
	assert.Equal(t, 2, updated.VideoRetryCount)
	assert.Empty(t, updated.VideoError)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, diary.ID, queue.jobs[0].DiaryID)
	assert.Equal(t, 42, queue.jobs[0].UserID)
	assert.Equal(t, diary.Title, queue.jobs[0].Title)
}

func TestRetryRejectedAtLimit(t *testing.T) {
	uc, repo, queue := newRetryFixture()
	diary := failedDiary(42, entity.MaxVideoRetries)
	repo.put(diary)

	_, err := uc.Execute(context.Background(), 42, diary.ID)
	require.ErrorIs(t, err, ErrRetryLimitExceeded)

	// Nothing changed, nothing enqueued.
	assert.Equal(t, entity.VideoStatusFailed, repo.get(diary.ID).VideoStatus)
	assert.Equal(t, entity.MaxVideoRetries, repo.get(diary.ID).VideoRetryCount)
	assert.Empty(t, queue.jobs)
}

func TestRetryRejectedWhenNotFailed(t *testing.T) {
	uc, repo, _ := newRetryFixture()
	diary := failedDiary(42, 0)
	diary.VideoStatus = entity.VideoStatusProcessing
	repo.put(diary)

	_, err := uc.Execute(context.Background(), 42, diary.ID)
	assert.ErrorIs(t, err, ErrVideoNotFailed)
}

func TestRetryRejectedForWrongOwner(t *testing.T) {
	uc, repo, _ := newRetryFixture()
	diary := failedDiary(42, 0)
	repo.put(diary)

	_, err := uc.Execute(context.Background(), 99, diary.ID)
	assert.ErrorIs(t, err, ErrDiaryNotOwned)
}

func TestRetryRejectedForMissingDiary(t *testing.T) {
	uc, _, _ := newRetryFixture()

	_, err := uc.Execute(context.Background(), 42, uuid.New())
	assert.ErrorIs(t, err, ErrDiaryNotFound)
}

func TestRetryRejectedForDeletedDiary(t *testing.T) {
	uc, repo, _ := newRetryFixture()
	diary := failedDiary(42, 0)
	now := time.Now()
	diary.DeletedAt = &now
	repo.put(diary)

	_, err := uc.Execute(context.Background(), 42, diary.ID)
	assert.ErrorIs(t, err, ErrDiaryNotFound)
}

func TestRetryCounterMonotonic(t *testing.T) {
	uc, repo, _ := newRetryFixture()
	diary := failedDiary(42, 0)
	repo.put(diary)

	for want := 1; want <= entity.MaxVideoRetries; want++ {
		updated, err := uc.Execute(context.Background(), 42, diary.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.VideoRetryCount)
		// Simulate the pipeline failing again.
		require.NoError(t, repo.UpdateVideoStatus(context.Background(), diary.ID, entity.VideoStatusFailed, "FAILED"))
	}

	_, err := uc.Execute(context.Background(), 42, diary.ID)
	assert.ErrorIs(t, err, ErrRetryLimitExceeded)
	assert.Equal(t, entity.MaxVideoRetries, repo.get(diary.ID).VideoRetryCount)
}
