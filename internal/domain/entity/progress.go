package entity

import "github.com/google/uuid"

// ProgressEvent is pushed to the owning user's live connections as the
// pipeline advances. Ephemeral: never persisted, never read back.
type ProgressEvent struct {
	DiaryID      uuid.UUID   `json:"diaryId"`
	Status       VideoStatus `json:"status"`
	Message      string      `json:"message"`
	VideoURL     string      `json:"videoUrl,omitempty"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	SubtitleURL  string      `json:"subtitleUrl,omitempty"`
}
