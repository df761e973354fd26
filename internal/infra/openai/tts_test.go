package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSpeechVoiceMapping(t *testing.T) {
	assert.EqualValues(t, "onyx", speechVoice(entity.VoiceMale))
	assert.EqualValues(t, "nova", speechVoice(entity.VoiceFemale))
}

func TestSynthesizeAllReturnsAudioPerScene(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/speech", r.URL.Path)

		var req struct {
			Voice string `json:"voice"`
			Input string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nova", req.Voice)
		fmt.Fprintf(w, "mp3:%s", req.Input)
	})

	synth := NewSpeechSynthesizer(client, zap.NewNop())
	scenes := []entity.Scene{
		{Index: 1, NarrationText: "first"},
		{Index: 2, NarrationText: "second"},
	}
	audios, err := synth.SynthesizeAll(context.Background(), scenes, entity.VoiceFemale)
	require.NoError(t, err)

	require.Len(t, audios, 2)
	assert.Equal(t, 1, audios[0].SceneIndex)
	assert.Equal(t, []byte("mp3:first"), audios[0].Data)
	assert.Equal(t, []byte("mp3:second"), audios[1].Data)
}

func TestSynthesizeAllRejectsEmptyAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	synth := NewSpeechSynthesizer(client, zap.NewNop())
	_, err := synth.SynthesizeAll(context.Background(),
		[]entity.Scene{{Index: 1, NarrationText: "quiet"}}, entity.VoiceMale)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty speech output")
}

func TestTranscribeMapsSegments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"task": "transcribe",
			"duration": 4.2,
			"text": "hello world",
			"segments": [
				{"id": 0, "start": 0.0, "end": 2.1, "text": "hello"},
				{"id": 1, "start": 2.1, "end": 4.2, "text": "world"}
			]
		}`)
	})

	tr := NewTranscriber(client, zap.NewNop())
	transcript, err := tr.Transcribe(context.Background(), entity.GeneratedAudio{SceneIndex: 1, Data: []byte("mp3")})
	require.NoError(t, err)

	assert.Equal(t, 1, transcript.SceneIndex)
	assert.InDelta(t, 4.2, transcript.DurationSeconds, 0.001)
	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, "hello", transcript.Segments[0].Text)
	assert.InDelta(t, 2.1, transcript.Segments[1].Start, 0.001)
}
