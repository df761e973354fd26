package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkFailedKeepsCodeAndMarkProcessingClearsIt(t *testing.T) {
	d := &Diary{VideoStatus: VideoStatusPending}

	d.MarkProcessing()
	assert.Equal(t, VideoStatusProcessing, d.VideoStatus)

	d.MarkFailed("FAILED_AT_SCENE_ANALYSIS")
	assert.Equal(t, VideoStatusFailed, d.VideoStatus)
	assert.Equal(t, "FAILED_AT_SCENE_ANALYSIS", d.VideoError)

	d.MarkProcessing()
	assert.Empty(t, d.VideoError)
}

func TestMarkCompletedSetsURLs(t *testing.T) {
	d := &Diary{VideoStatus: VideoStatusProcessing, VideoError: "FAILED"}

	d.MarkCompleted(VideoURLs{
		Video:     "https://cdn.example/v.mp4",
		Thumbnail: "https://cdn.example/t.png",
		Subtitle:  "https://cdn.example/s.vtt",
	})

	assert.Equal(t, VideoStatusCompleted, d.VideoStatus)
	assert.Equal(t, "https://cdn.example/v.mp4", d.VideoURL)
	assert.Equal(t, "https://cdn.example/t.png", d.ThumbnailURL)
	assert.Equal(t, "https://cdn.example/s.vtt", d.SubtitleURL)
	assert.Empty(t, d.VideoError)
}

func TestRetryCounterBoundsRetries(t *testing.T) {
	d := &Diary{VideoStatus: VideoStatusFailed}

	for i := 0; i < MaxVideoRetries; i++ {
		assert.True(t, d.CanRetryVideo())
		d.ResetForRetry()
		assert.Equal(t, VideoStatusPending, d.VideoStatus)
		d.MarkFailed("FAILED")
	}

	assert.False(t, d.CanRetryVideo())
}

func TestFailureCodePerStage(t *testing.T) {
	cases := []struct {
		stage Stage
		code  string
	}{
		{StageSceneAnalysis, "FAILED_AT_SCENE_ANALYSIS"},
		{StageMediaGeneration, "FAILED_AT_AUDIO_IMAGE"},
		{StageAudioAnalysis, "FAILED_AT_AUDIO_ANALYSIS"},
		{StageSubtitle, "FAILED_AT_SUBTITLE"},
		{StageComposing, "FAILED_AT_VIDEO_COMPOSING"},
		{StageUpload, "FAILED_AT_FILE_UPLOAD"},
	}

	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			err := &StageError{Stage: tc.stage, Err: errors.New("boom")}
			assert.Equal(t, tc.code, FailureCode(err))
			assert.Equal(t, tc.code, FailureCode(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestFailureCodeFallsBackForUnattributedErrors(t *testing.T) {
	assert.Equal(t, "FAILED", FailureCode(errors.New("connection reset")))
}

func TestStageErrorUnwraps(t *testing.T) {
	inner := errors.New("quota exceeded")
	err := &StageError{Stage: StageUpload, Err: inner}
	assert.ErrorIs(t, err, inner)
}
