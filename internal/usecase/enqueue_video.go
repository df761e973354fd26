package usecase

import (
	"context"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/port"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/videomsg"
	"go.uber.org/zap"
)

// EnqueueVideoUseCase schedules video generation for a diary entry. It never
// propagates an error: diary creation must succeed even when the queue is
// down. A failed enqueue marks the diary FAILED with a failed-to-start code
// so the user can retry later.
type EnqueueVideoUseCase struct {
	queue  port.JobQueue
	repo   port.DiaryRepository
	logger *zap.Logger
}

func NewEnqueueVideoUseCase(queue port.JobQueue, repo port.DiaryRepository, logger *zap.Logger) *EnqueueVideoUseCase {
	return &EnqueueVideoUseCase{queue: queue, repo: repo, logger: logger}
}

func (uc *EnqueueVideoUseCase) Enqueue(ctx context.Context, job entity.VideoJob) {
	log := uc.logger.With(zap.String("diary_id", job.DiaryID.String()))

	if err := uc.queue.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue video job", zap.Error(err))
		if err := uc.repo.UpdateVideoStatus(ctx, job.DiaryID, entity.VideoStatusFailed, videomsg.FailedStart); err != nil {
			log.Error("failed to mark diary as failed-to-start", zap.Error(err))
		}
		return
	}

	log.Info("video generation job enqueued")
}
