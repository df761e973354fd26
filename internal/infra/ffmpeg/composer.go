package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	"go.uber.org/zap"
)

// Composer builds the final mp4 from per-scene images and audio using the
// ffmpeg binary. All intermediate files live in the job's temp workspace.
type Composer struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewComposer(logger *zap.Logger) *Composer {
	return &Composer{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
}

func (c *Composer) Compose(
	ctx context.Context,
	workDir string,
	images []entity.GeneratedImage,
	audios []entity.GeneratedAudio,
	vtt string,
	durations []float64,
) (*entity.ComposedArtifact, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("compose: no images")
	}
	if len(audios) == 0 {
		return nil, fmt.Errorf("compose: no audio")
	}
	if strings.TrimSpace(vtt) == "" {
		return nil, fmt.Errorf("compose: empty subtitle track")
	}
	if len(durations) != len(images) {
		return nil, fmt.Errorf("compose: %d durations for %d images", len(durations), len(images))
	}

	imagePaths := make([]string, 0, len(images))
	for i, img := range images {
		path := filepath.Join(workDir, fmt.Sprintf("image-%d.png", i+1))
		if err := c.downloadFile(ctx, img.URL, path); err != nil {
			return nil, fmt.Errorf("download image for scene %d: %w", img.SceneIndex, err)
		}
		imagePaths = append(imagePaths, path)
	}

	audioPaths := make([]string, 0, len(audios))
	for i, audio := range audios {
		if len(audio.Data) == 0 {
			return nil, fmt.Errorf("empty audio buffer for scene %d", audio.SceneIndex)
		}
		path := filepath.Join(workDir, fmt.Sprintf("audio-%d.mp3", i+1))
		if err := os.WriteFile(path, audio.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write audio for scene %d: %w", audio.SceneIndex, err)
		}
		audioPaths = append(audioPaths, path)
	}

	mergedAudioPath := filepath.Join(workDir, "merged-audio.mp3")
	if err := c.mergeAudios(ctx, workDir, audioPaths, mergedAudioPath); err != nil {
		return nil, fmt.Errorf("merge audio: %w", err)
	}

	videoPath := filepath.Join(workDir, "output.mp4")
	if err := c.createSlideshow(ctx, workDir, imagePaths, durations, mergedAudioPath, videoPath); err != nil {
		return nil, fmt.Errorf("create slideshow: %w", err)
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("composed video missing: %w", err)
	}

	subtitlePath := filepath.Join(workDir, "subtitle.vtt")
	if err := os.WriteFile(subtitlePath, []byte(vtt), 0o644); err != nil {
		return nil, fmt.Errorf("write subtitle file: %w", err)
	}

	c.logger.Info("video composed",
		zap.String("video", videoPath),
		zap.Int("scenes", len(imagePaths)),
	)

	// The first scene's image doubles as the thumbnail.
	return &entity.ComposedArtifact{
		VideoPath:     videoPath,
		SubtitlePath:  subtitlePath,
		ThumbnailPath: imagePaths[0],
	}, nil
}

func (c *Composer) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("downloaded file is empty")
	}

	return os.WriteFile(destPath, data, 0o644)
}

func (c *Composer) mergeAudios(ctx context.Context, workDir string, audioPaths []string, outputPath string) error {
	listPath := filepath.Join(workDir, "audio-concat.txt")
	var list strings.Builder
	for _, p := range audioPaths {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("merged audio missing: %w", err)
	}
	return nil
}

func (c *Composer) createSlideshow(ctx context.Context, workDir string, imagePaths []string, durations []float64, audioPath, outputPath string) error {
	listPath := filepath.Join(workDir, "concat.txt")
	var list strings.Builder
	for i, p := range imagePaths {
		d := durations[i]
		if d <= 0 {
			d = 5
		}
		fmt.Fprintf(&list, "file '%s'\nduration %.3f\n", p, d)
	}
	// Concat demuxer wants the final entry repeated without a duration.
	fmt.Fprintf(&list, "file '%s'\n", imagePaths[len(imagePaths)-1])
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-shortest",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}
	return nil
}
