package entity

import (
	"errors"
	"fmt"
)

// Stage identifies one ordered step of the generation pipeline.
type Stage string

const (
	StageSceneAnalysis   Stage = "SCENE_ANALYSIS"
	StageMediaGeneration Stage = "AUDIO_IMAGE_GENERATION"
	StageAudioAnalysis   Stage = "AUDIO_ANALYSIS"
	StageSubtitle        Stage = "SUBTITLE_GENERATION"
	StageComposing       Stage = "VIDEO_COMPOSING"
	StageUpload          Stage = "FILE_UPLOAD"
)

// StageError wraps a stage failure so the orchestrator's top level can map it
// to a stage-specific failure code before re-raising to the queue.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailureCode maps an error to the language-neutral code persisted on the
// diary and broadcast to the user. Text is resolved at the presentation
// boundary, see the videomsg package.
func FailureCode(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		switch se.Stage {
		case StageSceneAnalysis:
			return "FAILED_AT_SCENE_ANALYSIS"
		case StageMediaGeneration:
			return "FAILED_AT_AUDIO_IMAGE"
		case StageAudioAnalysis:
			return "FAILED_AT_AUDIO_ANALYSIS"
		case StageSubtitle:
			return "FAILED_AT_SUBTITLE"
		case StageComposing:
			return "FAILED_AT_VIDEO_COMPOSING"
		case StageUpload:
			return "FAILED_AT_FILE_UPLOAD"
		}
	}
	return "FAILED"
}
