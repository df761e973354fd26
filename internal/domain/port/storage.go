package port

import (
	"context"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
)

// ArtifactStore uploads the composed artifacts under a diary-scoped prefix
// and returns their public URLs.
type ArtifactStore interface {
	UploadArtifacts(ctx context.Context, diaryID uuid.UUID, artifact *entity.ComposedArtifact) (entity.VideoURLs, error)
}
