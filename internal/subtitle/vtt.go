// Package subtitle assembles one WebVTT track from per-scene transcripts.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
)

// BuildVTT concatenates all scenes' segments into a single track. Each
// scene's cues are shifted by the sum of the previous scenes' actual speech
// lengths (the last segment's end time), not their nominal durations, so cue
// timing tracks what was really spoken. Transcripts must arrive in scene
// index order.
func BuildVTT(transcripts []entity.SceneTranscript) (string, error) {
	if len(transcripts) == 0 {
		return "", fmt.Errorf("no transcripts to build subtitles from")
	}

	var b strings.Builder
	b.WriteString("WEBVTT\n\n")

	offset := 0.0
	for _, tr := range transcripts {
		lastEnd := 0.0
		for _, seg := range tr.Segments {
			b.WriteString(FormatTimestamp(offset + seg.Start))
			b.WriteString(" --> ")
			b.WriteString(FormatTimestamp(offset + seg.End))
			b.WriteByte('\n')
			b.WriteString(strings.TrimSpace(seg.Text))
			b.WriteString("\n\n")
			lastEnd = seg.End
		}
		offset += lastEnd
	}

	return b.String(), nil
}

// FormatTimestamp renders seconds as a VTT timestamp, HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	ms := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
