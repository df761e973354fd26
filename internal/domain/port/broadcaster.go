package port

import "github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"

// Broadcaster fans a progress event out to every live connection of a user.
// Delivery is best effort: a user with no open connection misses the event.
type Broadcaster interface {
	Publish(userID int, event entity.ProgressEvent)
}
