package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/metrics"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Attempts per scene when the provider rejects a prompt on content-policy
// grounds. Any other error class fails immediately.
const maxContentPolicyAttempts = 3

var contentPolicyMarkers = []string{
	"content_policy_violation",
	"content policy",
	"safety system",
}

type ImageGenerator struct {
	client *openai.Client
	logger *zap.Logger
}

func NewImageGenerator(client *openai.Client, logger *zap.Logger) *ImageGenerator {
	return &ImageGenerator{client: client, logger: logger}
}

// isContentPolicyError matches known provider wording for prompt rejections.
func isContentPolicyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range contentPolicyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func imagePrompt(scene entity.Scene, character entity.CharacterProfile) string {
	return fmt.Sprintf(
		"Create a beautiful, cinematic illustration for a diary video. Main character: %s. Scene: %s. Style: warm, cozy, anime-inspired illustration with soft lighting.",
		character.Description, scene.VisualDescription,
	)
}

// GenerateAll renders one image per scene in order. The character description
// is prepended to every prompt so the author looks the same in every scene.
func (g *ImageGenerator) GenerateAll(ctx context.Context, scenes []entity.Scene, character entity.CharacterProfile) ([]entity.GeneratedImage, error) {
	images := make([]entity.GeneratedImage, 0, len(scenes))

	for _, scene := range scenes {
		url, err := g.generateOne(ctx, scene, character)
		if err != nil {
			return nil, fmt.Errorf("generate image for scene %d: %w", scene.Index, err)
		}
		images = append(images, entity.GeneratedImage{SceneIndex: scene.Index, URL: url})
	}

	return images, nil
}

func (g *ImageGenerator) generateOne(ctx context.Context, scene entity.Scene, character entity.CharacterProfile) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxContentPolicyAttempts; attempt++ {
		resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
			Model:   openai.CreateImageModelDallE3,
			Prompt:  imagePrompt(scene, character),
			N:       1,
			Size:    openai.CreateImageSize1792x1024,
			Quality: openai.CreateImageQualityStandard,
		})
		if err != nil {
			if !isContentPolicyError(err) {
				return "", err
			}
			lastErr = err
			metrics.ImagePolicyRetries.Inc()
			g.logger.Warn("image prompt rejected by content policy",
				zap.Int("scene", scene.Index),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		if len(resp.Data) == 0 || resp.Data[0].URL == "" {
			return "", fmt.Errorf("image response carried no url")
		}
		return resp.Data[0].URL, nil
	}

	return "", fmt.Errorf("content policy rejection after %d attempts: %w", maxContentPolicyAttempts, lastErr)
}
