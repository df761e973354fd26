package port

import (
	"context"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
)

// DiaryRepository is the worker's window onto the diary table. Only the
// video columns are mutated here.
type DiaryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Diary, error)
	UpdateVideoStatus(ctx context.Context, id uuid.UUID, status entity.VideoStatus, errorCode string) error
	UpdateVideoURLs(ctx context.Context, id uuid.UUID, urls entity.VideoURLs) error
	ResetVideoForRetry(ctx context.Context, id uuid.UUID) (*entity.Diary, error)
}
