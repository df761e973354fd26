package usecase

import (
	"context"
	"errors"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDiaryNotFound      = errors.New("diary not found")
	ErrDiaryNotOwned      = errors.New("diary does not belong to user")
	ErrVideoNotFailed     = errors.New("video generation has not failed")
	ErrRetryLimitExceeded = errors.New("video retry limit exceeded")
)

// RetryVideoUseCase is the only path by which a diary's video status moves
// FAILED -> PENDING. Retries are bounded by the diary's retry counter.
type RetryVideoUseCase struct {
	repo     port.DiaryRepository
	producer *EnqueueVideoUseCase
	logger   *zap.Logger
}

func NewRetryVideoUseCase(repo port.DiaryRepository, producer *EnqueueVideoUseCase, logger *zap.Logger) *RetryVideoUseCase {
	return &RetryVideoUseCase{repo: repo, producer: producer, logger: logger}
}

func (uc *RetryVideoUseCase) Execute(ctx context.Context, userID int, diaryID uuid.UUID) (*entity.Diary, error) {
	diary, err := uc.repo.FindByID(ctx, diaryID)
	if err != nil || diary == nil || diary.DeletedAt != nil {
		return nil, ErrDiaryNotFound
	}

	if diary.UserID != userID {
		return nil, ErrDiaryNotOwned
	}

	if diary.VideoStatus != entity.VideoStatusFailed {
		return nil, ErrVideoNotFailed
	}

	if !diary.CanRetryVideo() {
		return nil, ErrRetryLimitExceeded
	}

	updated, err := uc.repo.ResetVideoForRetry(ctx, diaryID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("retrying video generation",
		zap.String("diary_id", diaryID.String()),
		zap.Int("retry_count", updated.VideoRetryCount),
	)

	uc.producer.Enqueue(ctx, entity.VideoJob{
		DiaryID: diary.ID,
		UserID:  userID,
		Title:   diary.Title,
		Content: diary.Content,
	})

	return updated, nil
}
