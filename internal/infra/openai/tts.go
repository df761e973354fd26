package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type SpeechSynthesizer struct {
	client *openai.Client
	logger *zap.Logger
}

func NewSpeechSynthesizer(client *openai.Client, logger *zap.Logger) *SpeechSynthesizer {
	return &SpeechSynthesizer{client: client, logger: logger}
}

func speechVoice(voice entity.Voice) openai.SpeechVoice {
	if voice == entity.VoiceMale {
		return openai.VoiceOnyx
	}
	return openai.VoiceNova
}

// SynthesizeAll narrates the scenes sequentially. There is no per-scene
// retry: any failure aborts the stage.
func (s *SpeechSynthesizer) SynthesizeAll(ctx context.Context, scenes []entity.Scene, voice entity.Voice) ([]entity.GeneratedAudio, error) {
	audios := make([]entity.GeneratedAudio, 0, len(scenes))

	for _, scene := range scenes {
		resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model: openai.TTSModel1,
			Voice: speechVoice(voice),
			Input: scene.NarrationText,
		})
		if err != nil {
			return nil, fmt.Errorf("synthesize scene %d: %w", scene.Index, err)
		}

		data, err := io.ReadAll(resp)
		resp.Close()
		if err != nil {
			return nil, fmt.Errorf("read speech for scene %d: %w", scene.Index, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("empty speech output for scene %d", scene.Index)
		}

		audios = append(audios, entity.GeneratedAudio{SceneIndex: scene.Index, Data: data})
		s.logger.Debug("speech synthesized",
			zap.Int("scene", scene.Index),
			zap.Int("bytes", len(data)),
		)
	}

	if len(audios) != len(scenes) {
		return nil, fmt.Errorf("audio count mismatch: expected %d, got %d", len(scenes), len(audios))
	}
	return audios, nil
}
