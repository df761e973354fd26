package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/port"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/infra/metrics"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/subtitle"
	"github.com/diaryTvideo-Team/DiaryTvideo/internal/videomsg"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GenerateVideoUseCase drives the whole pipeline for one job: scene analysis,
// parallel speech/image generation, transcription, subtitle assembly,
// composition, upload, completion. Stages run in fixed order; the single
// fan-out point is speech+images.
type GenerateVideoUseCase struct {
	repo        port.DiaryRepository
	splitter    port.SceneSplitter
	speech      port.SpeechSynthesizer
	images      port.ImageGenerator
	transcriber port.Transcriber
	composer    port.VideoComposer
	store       port.ArtifactStore
	broadcaster port.Broadcaster
	tracker     port.JobTracker
	logger      *zap.Logger
	tempDir     string
}

func NewGenerateVideoUseCase(
	repo port.DiaryRepository,
	splitter port.SceneSplitter,
	speech port.SpeechSynthesizer,
	images port.ImageGenerator,
	transcriber port.Transcriber,
	composer port.VideoComposer,
	store port.ArtifactStore,
	broadcaster port.Broadcaster,
	tracker port.JobTracker,
	logger *zap.Logger,
	tempDir string,
) *GenerateVideoUseCase {
	return &GenerateVideoUseCase{
		repo:        repo,
		splitter:    splitter,
		speech:      speech,
		images:      images,
		transcriber: transcriber,
		composer:    composer,
		store:       store,
		broadcaster: broadcaster,
		tracker:     tracker,
		logger:      logger,
		tempDir:     tempDir,
	}
}

// Execute is the queue consumer's handler. Errors returned here trigger
// queue-level redelivery with backoff, except ErrUnprocessable which parks
// the delivery immediately.
func (uc *GenerateVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "GenerateVideoUseCase.Execute")
	defer span.End()

	var job entity.VideoJob
	if err := json.Unmarshal(rawMsg, &job); err != nil {
		uc.logger.Error("failed to unmarshal job", zap.Error(err), zap.ByteString("body", rawMsg))
		return fmt.Errorf("%w: %v", port.ErrUnprocessable, err)
	}

	span.SetAttributes(
		attribute.String("job.diary_id", job.DiaryID.String()),
		attribute.Int("job.user_id", job.UserID),
	)

	log := uc.logger.With(
		zap.String("diary_id", job.DiaryID.String()),
		zap.Int("user_id", job.UserID),
	)

	// Per-diary mutual exclusion: a second delivery for the same diary while
	// one is in flight is dropped, not queued behind it.
	acquired, err := uc.tracker.TryAcquire(ctx, job.DiaryID)
	if err != nil {
		log.Error("job lock check failed", zap.Error(err))
		return fmt.Errorf("acquire job lock: %w", err)
	}
	if !acquired {
		log.Warn("job already in flight for this diary, dropping delivery")
		metrics.JobsProcessedTotal.WithLabelValues("duplicate").Inc()
		return nil
	}
	defer func() {
		if err := uc.tracker.Release(context.WithoutCancel(ctx), job.DiaryID); err != nil {
			log.Error("failed to release job lock", zap.Error(err))
		}
	}()

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	totalTimer := time.Now()

	if err := uc.runPipeline(ctx, job, log); err != nil {
		code := entity.FailureCode(err)
		log.Error("video generation failed", zap.String("code", code), zap.Error(err))

		// No stage may leave the diary status behind: persist the failure,
		// tell the user, then re-raise so the queue applies its own backoff.
		// Terminal writes must land even when the failure was a shutdown
		// cancelling ctx, otherwise the diary sits in PROCESSING until
		// redelivery.
		persistCtx := context.WithoutCancel(ctx)
		if repoErr := uc.repo.UpdateVideoStatus(persistCtx, job.DiaryID, entity.VideoStatusFailed, code); repoErr != nil {
			log.Error("failed to persist FAILED status", zap.Error(repoErr))
		}
		uc.publishProgress(job, entity.VideoStatusFailed, code, entity.VideoURLs{})
		if trackErr := uc.tracker.RecordOutcome(persistCtx, job.DiaryID, entity.VideoStatusFailed, code); trackErr != nil {
			log.Error("failed to record job outcome", zap.Error(trackErr))
		}

		metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()
		return err
	}

	if err := uc.tracker.RecordOutcome(ctx, job.DiaryID, entity.VideoStatusCompleted, ""); err != nil {
		log.Error("failed to record job outcome", zap.Error(err))
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	log.Info("video generation completed", zap.Duration("elapsed", time.Since(totalTimer)))

	return nil
}

func (uc *GenerateVideoUseCase) runPipeline(ctx context.Context, job entity.VideoJob, log *zap.Logger) (err error) {
	workDir := filepath.Join(uc.tempDir, job.DiaryID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return &entity.StageError{Stage: entity.StageComposing, Err: fmt.Errorf("create workspace: %w", err)}
	}
	// The workspace is removed whatever happens, including the error path
	// that re-raises to the queue.
	defer os.RemoveAll(workDir)

	// Intake: the diary leaves PENDING before any external call.
	if err := uc.repo.UpdateVideoStatus(ctx, job.DiaryID, entity.VideoStatusProcessing, ""); err != nil {
		return fmt.Errorf("mark diary processing: %w", err)
	}
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.SceneAnalysis, entity.VideoURLs{})

	// Scene analysis.
	split, err := stage(ctx, entity.StageSceneAnalysis, "scene_analysis", func(ctx context.Context) (*entity.SceneSplit, error) {
		return uc.splitter.SplitScenes(ctx, job.Title, job.Content)
	})
	if err != nil {
		return err
	}
	metrics.ScenesGeneratedTotal.Add(float64(len(split.Scenes)))
	log.Info("scene analysis done", zap.Int("scenes", len(split.Scenes)))

	// Speech and images in parallel; both must finish before transcription.
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.AudioImageGeneration, entity.VideoURLs{})

	type mediaOut struct {
		audios []entity.GeneratedAudio
		images []entity.GeneratedImage
	}
	media, err := stage(ctx, entity.StageMediaGeneration, "media_generation", func(ctx context.Context) (mediaOut, error) {
		var out mediaOut
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			audios, err := uc.speech.SynthesizeAll(gctx, split.Scenes, split.Voice)
			if err != nil {
				return fmt.Errorf("speech synthesis: %w", err)
			}
			out.audios = audios
			return nil
		})
		g.Go(func() error {
			images, err := uc.images.GenerateAll(gctx, split.Scenes, split.Character)
			if err != nil {
				return fmt.Errorf("image generation: %w", err)
			}
			out.images = images
			return nil
		})
		if err := g.Wait(); err != nil {
			return mediaOut{}, err
		}
		if len(out.audios) != len(split.Scenes) || len(out.images) != len(split.Scenes) {
			return mediaOut{}, fmt.Errorf("media count mismatch: %d scenes, %d audios, %d images",
				len(split.Scenes), len(out.audios), len(out.images))
		}
		return out, nil
	})
	if err != nil {
		return err
	}

	// Transcription, scene by scene in index order.
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.AudioAnalysis, entity.VideoURLs{})

	transcripts, err := stage(ctx, entity.StageAudioAnalysis, "transcription", func(ctx context.Context) ([]entity.SceneTranscript, error) {
		transcripts := make([]entity.SceneTranscript, 0, len(media.audios))
		for _, audio := range media.audios {
			tr, err := uc.transcriber.Transcribe(ctx, audio)
			if err != nil {
				return nil, err
			}
			transcripts = append(transcripts, *tr)
		}
		return transcripts, nil
	})
	if err != nil {
		return err
	}

	// Subtitle assembly with cumulative offsets.
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.SubtitleGeneration, entity.VideoURLs{})

	vtt, err := stage(ctx, entity.StageSubtitle, "subtitle_assembly", func(ctx context.Context) (string, error) {
		return subtitle.BuildVTT(transcripts)
	})
	if err != nil {
		return err
	}

	// Composition.
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.VideoComposing, entity.VideoURLs{})

	durations := make([]float64, len(transcripts))
	for i, tr := range transcripts {
		durations[i] = tr.DurationSeconds
	}
	artifact, err := stage(ctx, entity.StageComposing, "composition", func(ctx context.Context) (*entity.ComposedArtifact, error) {
		return uc.composer.Compose(ctx, workDir, media.images, media.audios, vtt, durations)
	})
	if err != nil {
		return err
	}

	// Upload.
	uc.publishProgress(job, entity.VideoStatusProcessing, videomsg.FileUpload, entity.VideoURLs{})

	urls, err := stage(ctx, entity.StageUpload, "upload", func(ctx context.Context) (entity.VideoURLs, error) {
		return uc.store.UploadArtifacts(ctx, job.DiaryID, artifact)
	})
	if err != nil {
		return err
	}

	// Completion.
	if err := uc.repo.UpdateVideoURLs(ctx, job.DiaryID, urls); err != nil {
		return fmt.Errorf("persist video urls: %w", err)
	}
	if err := uc.repo.UpdateVideoStatus(ctx, job.DiaryID, entity.VideoStatusCompleted, ""); err != nil {
		return fmt.Errorf("mark diary completed: %w", err)
	}
	uc.publishProgress(job, entity.VideoStatusCompleted, videomsg.Completed, urls)

	return nil
}

// stage wraps one pipeline step with its span, duration metric, and stage
// attribution for failure mapping.
func stage[T any](ctx context.Context, st entity.Stage, name string, fn func(context.Context) (T, error)) (T, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		var zero T
		return zero, &entity.StageError{Stage: st, Err: err}
	}
	return out, nil
}

func (uc *GenerateVideoUseCase) publishProgress(job entity.VideoJob, status entity.VideoStatus, code string, urls entity.VideoURLs) {
	uc.broadcaster.Publish(job.UserID, entity.ProgressEvent{
		DiaryID:      job.DiaryID,
		Status:       status,
		Message:      videomsg.Text(code, videomsg.English),
		VideoURL:     urls.Video,
		ThumbnailURL: urls.Thumbnail,
		SubtitleURL:  urls.Subtitle,
	})
}
