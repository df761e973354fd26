package port

import (
	"context"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
)

// SceneSplitter turns a diary entry into 1-6 narrated scenes plus a shared
// character profile and voice selection.
type SceneSplitter interface {
	SplitScenes(ctx context.Context, title, content string) (*entity.SceneSplit, error)
}

// SpeechSynthesizer narrates every scene with the selected voice, in order.
type SpeechSynthesizer interface {
	SynthesizeAll(ctx context.Context, scenes []entity.Scene, voice entity.Voice) ([]entity.GeneratedAudio, error)
}

// ImageGenerator renders one image per scene, keeping the character
// description prefixed for visual consistency.
type ImageGenerator interface {
	GenerateAll(ctx context.Context, scenes []entity.Scene, character entity.CharacterProfile) ([]entity.GeneratedImage, error)
}

// Transcriber extracts timed segments from one scene's audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audio entity.GeneratedAudio) (*entity.SceneTranscript, error)
}

// VideoComposer builds the final video, subtitle sidecar, and thumbnail
// inside workDir from the per-scene artifacts.
type VideoComposer interface {
	Compose(ctx context.Context, workDir string, images []entity.GeneratedImage, audios []entity.GeneratedAudio, vtt string, durations []float64) (*entity.ComposedArtifact, error)
}
