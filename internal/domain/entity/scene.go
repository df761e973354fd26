package entity

// Voice selects the narration voice for every scene of one job.
type Voice string

const (
	VoiceMale   Voice = "male"
	VoiceFemale Voice = "female"
)

// Scene is one narrated segment of a diary entry.
type Scene struct {
	Index             int
	VisualDescription string
	NarrationText     string
}

// CharacterProfile keeps image generation visually consistent across scenes.
type CharacterProfile struct {
	Description        string
	InferenceRationale string
}

// SceneSplit is the full scene-analysis result for one job.
type SceneSplit struct {
	Character CharacterProfile
	Voice     Voice
	Scenes    []Scene
}

// GeneratedImage is one provider-hosted image, positionally aligned to its scene.
type GeneratedImage struct {
	SceneIndex int
	URL        string
}

// GeneratedAudio is the synthesized narration for one scene.
type GeneratedAudio struct {
	SceneIndex int
	Data       []byte
}

// TranscriptSegment is one timed segment within a scene's audio.
type TranscriptSegment struct {
	Start float64
	End   float64
	Text  string
}

// SceneTranscript groups a scene's segments with its transcribed duration.
type SceneTranscript struct {
	SceneIndex      int
	DurationSeconds float64
	Segments        []TranscriptSegment
}

// ComposedArtifact holds the transient local paths produced by composition.
// They live only inside one job's temp workspace.
type ComposedArtifact struct {
	VideoPath     string
	SubtitlePath  string
	ThumbnailPath string
}
