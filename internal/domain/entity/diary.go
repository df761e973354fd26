package entity

import (
	"time"

	"github.com/google/uuid"
)

type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "PENDING"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusCompleted  VideoStatus = "COMPLETED"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// MaxVideoRetries bounds application-level retries of a failed generation.
const MaxVideoRetries = 3

// Diary is the worker's view of a diary entry: only the video-related
// fields are owned here, the rest belongs to the CRUD service.
type Diary struct {
	ID              uuid.UUID
	UserID          int
	Title           string
	Content         string
	VideoStatus     VideoStatus
	VideoError      string
	VideoRetryCount int
	VideoURL        string
	ThumbnailURL    string
	SubtitleURL     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

func (d *Diary) MarkProcessing() {
	d.VideoStatus = VideoStatusProcessing
	d.VideoError = ""
	d.UpdatedAt = time.Now().UTC()
}

func (d *Diary) MarkCompleted(urls VideoURLs) {
	d.VideoStatus = VideoStatusCompleted
	d.VideoURL = urls.Video
	d.ThumbnailURL = urls.Thumbnail
	d.SubtitleURL = urls.Subtitle
	d.VideoError = ""
	d.UpdatedAt = time.Now().UTC()
}

func (d *Diary) MarkFailed(code string) {
	d.VideoStatus = VideoStatusFailed
	d.VideoError = code
	d.UpdatedAt = time.Now().UTC()
}

// CanRetryVideo reports whether another application-level retry is allowed.
func (d *Diary) CanRetryVideo() bool {
	return d.VideoRetryCount < MaxVideoRetries
}

// ResetForRetry is the only valid FAILED -> PENDING transition.
func (d *Diary) ResetForRetry() {
	d.VideoStatus = VideoStatusPending
	d.VideoError = ""
	d.VideoRetryCount++
	d.UpdatedAt = time.Now().UTC()
}

// VideoURLs are the public artifact locations written on completion.
type VideoURLs struct {
	Video     string
	Thumbnail string
	Subtitle  string
}
