package minio

import (
	"context"
	"fmt"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

type Storage struct {
	client *miniogo.Client
	bucket string
	region string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// UploadArtifacts pushes the three composed files in parallel under a
// diary-scoped key prefix and returns their public URLs.
func (s *Storage) UploadArtifacts(ctx context.Context, diaryID uuid.UUID, artifact *entity.ComposedArtifact) (entity.VideoURLs, error) {
	videoKey := fmt.Sprintf("videos/%s/video.mp4", diaryID)
	thumbnailKey := fmt.Sprintf("videos/%s/thumbnail.png", diaryID)
	subtitleKey := fmt.Sprintf("videos/%s/subtitle.vtt", diaryID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.uploadFile(gctx, videoKey, artifact.VideoPath, "video/mp4")
	})
	g.Go(func() error {
		return s.uploadFile(gctx, thumbnailKey, artifact.ThumbnailPath, "image/png")
	})
	g.Go(func() error {
		return s.uploadFile(gctx, subtitleKey, artifact.SubtitlePath, "text/vtt")
	})
	if err := g.Wait(); err != nil {
		return entity.VideoURLs{}, err
	}

	return entity.VideoURLs{
		Video:     s.PublicURL(videoKey),
		Thumbnail: s.PublicURL(thumbnailKey),
		Subtitle:  s.PublicURL(subtitleKey),
	}, nil
}

func (s *Storage) uploadFile(ctx context.Context, key, path, contentType string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// PublicURL derives the object's URL from endpoint, bucket, and key.
func (s *Storage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
}
