package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/google/uuid"
)

type fakeRepo struct {
	mu       sync.Mutex
	diaries  map[uuid.UUID]*entity.Diary
	statuses []entity.VideoStatus
	failFind bool
	// honorCtx makes writes fail on a cancelled context, like a real driver.
	honorCtx bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{diaries: map[uuid.UUID]*entity.Diary{}}
}

func (r *fakeRepo) put(d *entity.Diary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diaries[d.ID] = d
}

func (r *fakeRepo) get(id uuid.UUID) *entity.Diary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diaries[id]
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, fmt.Errorf("find failed")
	}
	d, ok := r.diaries[id]
	if !ok {
		return nil, fmt.Errorf("diary not found")
	}
	return d, nil
}

func (r *fakeRepo) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status entity.VideoStatus, errorCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	d, ok := r.diaries[id]
	if !ok {
		d = &entity.Diary{ID: id}
		r.diaries[id] = d
	}
	d.VideoStatus = status
	d.VideoError = errorCode
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeRepo) UpdateVideoURLs(_ context.Context, id uuid.UUID, urls entity.VideoURLs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.diaries[id]
	d.VideoURL = urls.Video
	d.ThumbnailURL = urls.Thumbnail
	d.SubtitleURL = urls.Subtitle
	return nil
}

func (r *fakeRepo) ResetVideoForRetry(_ context.Context, id uuid.UUID) (*entity.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.diaries[id]
	if !ok {
		return nil, fmt.Errorf("diary not found")
	}
	d.ResetForRetry()
	return d, nil
}

type fakeSplitter struct {
	split *entity.SceneSplit
	err   error
	fn    func(ctx context.Context) (*entity.SceneSplit, error)
}

func (s *fakeSplitter) SplitScenes(ctx context.Context, _, _ string) (*entity.SceneSplit, error) {
	if s.fn != nil {
		return s.fn(ctx)
	}
	return s.split, s.err
}

type fakeSpeech struct {
	err error
}

func (s *fakeSpeech) SynthesizeAll(_ context.Context, scenes []entity.Scene, _ entity.Voice) ([]entity.GeneratedAudio, error) {
	if s.err != nil {
		return nil, s.err
	}
	audios := make([]entity.GeneratedAudio, len(scenes))
	for i, sc := range scenes {
		audios[i] = entity.GeneratedAudio{SceneIndex: sc.Index, Data: []byte("mp3-" + sc.NarrationText)}
	}
	return audios, nil
}

type fakeImages struct {
	err error
}

func (g *fakeImages) GenerateAll(_ context.Context, scenes []entity.Scene, _ entity.CharacterProfile) ([]entity.GeneratedImage, error) {
	if g.err != nil {
		return nil, g.err
	}
	images := make([]entity.GeneratedImage, len(scenes))
	for i, sc := range scenes {
		images[i] = entity.GeneratedImage{SceneIndex: sc.Index, URL: fmt.Sprintf("https://img.example/%d.png", sc.Index)}
	}
	return images, nil
}

type fakeTranscriber struct {
	err       error
	durations map[int]float64
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audio entity.GeneratedAudio) (*entity.SceneTranscript, error) {
	if t.err != nil {
		return nil, t.err
	}
	dur := 3.0
	if d, ok := t.durations[audio.SceneIndex]; ok {
		dur = d
	}
	return &entity.SceneTranscript{
		SceneIndex:      audio.SceneIndex,
		DurationSeconds: dur,
		Segments: []entity.TranscriptSegment{
			{Start: 0, End: dur, Text: fmt.Sprintf("scene %d", audio.SceneIndex)},
		},
	}, nil
}

type fakeComposer struct {
	err error
}

func (c *fakeComposer) Compose(_ context.Context, workDir string, images []entity.GeneratedImage, audios []entity.GeneratedAudio, vtt string, durations []float64) (*entity.ComposedArtifact, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(images) != len(audios) || len(durations) != len(images) {
		return nil, fmt.Errorf("mismatched inputs")
	}
	video := filepath.Join(workDir, "output.mp4")
	sub := filepath.Join(workDir, "subtitle.vtt")
	thumb := filepath.Join(workDir, "image-1.png")
	for _, p := range []string{video, thumb} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(sub, []byte(vtt), 0o644); err != nil {
		return nil, err
	}
	return &entity.ComposedArtifact{VideoPath: video, SubtitlePath: sub, ThumbnailPath: thumb}, nil
}

type fakeStore struct {
	err error
}

func (s *fakeStore) UploadArtifacts(_ context.Context, diaryID uuid.UUID, _ *entity.ComposedArtifact) (entity.VideoURLs, error) {
	if s.err != nil {
		return entity.VideoURLs{}, s.err
	}
	prefix := "https://store.example/videos/" + diaryID.String()
	return entity.VideoURLs{
		Video:     prefix + "/video.mp4",
		Thumbnail: prefix + "/thumbnail.png",
		Subtitle:  prefix + "/subtitle.vtt",
	}, nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []entity.ProgressEvent
}

func (b *fakeBroadcaster) Publish(_ int, event entity.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) all() []entity.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entity.ProgressEvent, len(b.events))
	copy(out, b.events)
	return out
}

type fakeTracker struct {
	mu       sync.Mutex
	locked   map[uuid.UUID]bool
	outcomes map[uuid.UUID]entity.VideoStatus
	honorCtx bool
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		locked:   map[uuid.UUID]bool{},
		outcomes: map[uuid.UUID]entity.VideoStatus{},
	}
}

func (t *fakeTracker) TryAcquire(_ context.Context, diaryID uuid.UUID) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locked[diaryID] {
		return false, nil
	}
	t.locked[diaryID] = true
	return true, nil
}

func (t *fakeTracker) Release(_ context.Context, diaryID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locked, diaryID)
	return nil
}

func (t *fakeTracker) RecordOutcome(ctx context.Context, diaryID uuid.UUID, status entity.VideoStatus, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	t.outcomes[diaryID] = status
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []entity.VideoJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job entity.VideoJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func oneScene() *entity.SceneSplit {
	return &entity.SceneSplit{
		Character: entity.CharacterProfile{Description: "a calm traveler", InferenceRationale: "test"},
		Voice:     entity.VoiceFemale,
		Scenes: []entity.Scene{
			{Index: 1, VisualDescription: "a quiet cafe", NarrationText: "Today I rested."},
		},
	}
}

func threeScenes() *entity.SceneSplit {
	split := oneScene()
	split.Scenes = append(split.Scenes,
		entity.Scene{Index: 2, VisualDescription: "a rainy street", NarrationText: "Then it rained."},
		entity.Scene{Index: 3, VisualDescription: "home at night", NarrationText: "I came home."},
	)
	return split
}
