package entity

import "github.com/google/uuid"

// VideoJob is the queue message requesting video generation for one diary.
// Identity is DiaryID; the queue deduplicates concurrent jobs on it.
type VideoJob struct {
	DiaryID uuid.UUID `json:"diaryId"`
	UserID  int       `json:"userId"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}
