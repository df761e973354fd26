package openai

import (
	"bytes"
	"context"
	"fmt"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Transcriber struct {
	client *openai.Client
	logger *zap.Logger
}

func NewTranscriber(client *openai.Client, logger *zap.Logger) *Transcriber {
	return &Transcriber{client: client, logger: logger}
}

// Transcribe extracts segment-level timestamps from one scene's audio.
func (t *Transcriber) Transcribe(ctx context.Context, audio entity.GeneratedAudio) (*entity.SceneTranscript, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: fmt.Sprintf("scene_%d.mp3", audio.SceneIndex),
		Reader:   bytes.NewReader(audio.Data),
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe scene %d: %w", audio.SceneIndex, err)
	}

	segments := make([]entity.TranscriptSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, entity.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	t.logger.Debug("scene transcribed",
		zap.Int("scene", audio.SceneIndex),
		zap.Float64("duration", resp.Duration),
		zap.Int("segments", len(segments)),
	)

	return &entity.SceneTranscript{
		SceneIndex:      audio.SceneIndex,
		DurationSeconds: resp.Duration,
		Segments:        segments,
	}, nil
}
