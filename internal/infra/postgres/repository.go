package postgres

import (
	"context"
	"fmt"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DiaryRepository mutates only the video columns of the diaries table; the
// rest is owned by the CRUD service.
type DiaryRepository struct {
	pool *pgxpool.Pool
}

func NewDiaryRepository(pool *pgxpool.Pool) *DiaryRepository {
	return &DiaryRepository{pool: pool}
}

const diaryColumns = `
	id, user_id, title, content, video_status, video_error,
	video_retry_count, video_url, thumbnail_url, subtitle_url,
	created_at, updated_at, deleted_at`

func (r *DiaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE id=$1`

	diary := &entity.Diary{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&diary.ID, &diary.UserID, &diary.Title, &diary.Content,
		&status, &diary.VideoError, &diary.VideoRetryCount,
		&diary.VideoURL, &diary.ThumbnailURL, &diary.SubtitleURL,
		&diary.CreatedAt, &diary.UpdatedAt, &diary.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find diary by id: %w", err)
	}
	diary.VideoStatus = entity.VideoStatus(status)
	return diary, nil
}

func (r *DiaryRepository) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status entity.VideoStatus, errorCode string) error {
	query := `
		UPDATE diaries SET
			video_status=$2, video_error=$3, updated_at=now()
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id, string(status), errorCode)
	if err != nil {
		return fmt.Errorf("update video status: %w", err)
	}
	return nil
}

func (r *DiaryRepository) UpdateVideoURLs(ctx context.Context, id uuid.UUID, urls entity.VideoURLs) error {
	query := `
		UPDATE diaries SET
			video_url=$2, thumbnail_url=$3, subtitle_url=$4, updated_at=now()
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id, urls.Video, urls.Thumbnail, urls.Subtitle)
	if err != nil {
		return fmt.Errorf("update video urls: %w", err)
	}
	return nil
}

// ResetVideoForRetry is the FAILED -> PENDING transition; it increments the
// retry counter and clears the prior error in one statement.
func (r *DiaryRepository) ResetVideoForRetry(ctx context.Context, id uuid.UUID) (*entity.Diary, error) {
	query := `
		UPDATE diaries SET
			video_status='PENDING', video_error='',
			video_retry_count=video_retry_count+1, updated_at=now()
		WHERE id=$1
		RETURNING ` + diaryColumns

	diary := &entity.Diary{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&diary.ID, &diary.UserID, &diary.Title, &diary.Content,
		&status, &diary.VideoError, &diary.VideoRetryCount,
		&diary.VideoURL, &diary.ThumbnailURL, &diary.SubtitleURL,
		&diary.CreatedAt, &diary.UpdatedAt, &diary.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("reset video for retry: %w", err)
	}
	diary.VideoStatus = entity.VideoStatus(status)
	return diary, nil
}
