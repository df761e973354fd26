// Package videomsg resolves status codes to user-facing text. The pipeline
// itself only deals in codes; lookup happens at the presentation boundary.
package videomsg

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Progress and failure codes emitted by the pipeline.
const (
	SceneAnalysis        = "SCENE_ANALYSIS"
	AudioImageGeneration = "AUDIO_IMAGE_GENERATION"
	AudioAnalysis        = "AUDIO_ANALYSIS"
	SubtitleGeneration   = "SUBTITLE_GENERATION"
	VideoComposing       = "VIDEO_COMPOSING"
	FileUpload           = "FILE_UPLOAD"
	Completed            = "COMPLETED"
	Failed               = "FAILED"
	FailedStart          = "FAILED_START"
	FailedSceneAnalysis  = "FAILED_AT_SCENE_ANALYSIS"
	FailedAudioImage     = "FAILED_AT_AUDIO_IMAGE"
	FailedAudioAnalysis  = "FAILED_AT_AUDIO_ANALYSIS"
	FailedSubtitle       = "FAILED_AT_SUBTITLE"
	FailedComposing      = "FAILED_AT_VIDEO_COMPOSING"
	FailedUpload         = "FAILED_AT_FILE_UPLOAD"
)

type Language string

const (
	English Language = "en"
	Korean  Language = "ko"
)

// Codes lists every message id the bundle carries.
var Codes = []string{
	SceneAnalysis, AudioImageGeneration, AudioAnalysis, SubtitleGeneration,
	VideoComposing, FileUpload, Completed, Failed, FailedStart,
	FailedSceneAnalysis, FailedAudioImage, FailedAudioAnalysis,
	FailedSubtitle, FailedComposing, FailedUpload,
}

var bundle = newBundle()

// newBundle registers both catalogues in memory; English is the bundle's
// default, so it backs any unsupported language tag.
func newBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)

	add := func(tag language.Tag, messages map[string]string) {
		for id, text := range messages {
			if err := b.AddMessages(tag, &i18n.Message{ID: id, Other: text}); err != nil {
				panic("videomsg: register message " + id + ": " + err.Error())
			}
		}
	}

	add(language.English, map[string]string{
		SceneAnalysis:        "Analyzing scenes and creating characters...",
		AudioImageGeneration: "Generating audio and images...",
		AudioAnalysis:        "Analyzing audio...",
		SubtitleGeneration:   "Generating subtitles...",
		VideoComposing:       "Composing video...",
		FileUpload:           "Uploading files...",
		Completed:            "Completed!",
		Failed:               "Video generation failed.",
		FailedStart:          "Failed to start video generation. Please retry.",
		FailedSceneAnalysis:  "Failed during scene analysis.",
		FailedAudioImage:     "Failed during audio/image generation.",
		FailedAudioAnalysis:  "Failed during audio analysis.",
		FailedSubtitle:       "Failed during subtitle generation.",
		FailedComposing:      "Failed during video composing.",
		FailedUpload:         "Failed during file upload.",
	})

	add(language.Korean, map[string]string{
		SceneAnalysis:        "장면 분석 및 캐릭터 생성 중...",
		AudioImageGeneration: "음성 및 이미지 생성 중...",
		AudioAnalysis:        "음성 분석 중...",
		SubtitleGeneration:   "자막 생성 중...",
		VideoComposing:       "영상 합성 중...",
		FileUpload:           "파일 업로드 중...",
		Completed:            "완료!",
		Failed:               "영상 생성에 실패했습니다.",
		FailedStart:          "영상 생성 시작에 실패했습니다. 재시도해 주세요.",
		FailedSceneAnalysis:  "장면 분석 중 실패했습니다.",
		FailedAudioImage:     "음성/이미지 생성 중 실패했습니다.",
		FailedAudioAnalysis:  "음성 분석 중 실패했습니다.",
		FailedSubtitle:       "자막 생성 중 실패했습니다.",
		FailedComposing:      "영상 합성 중 실패했습니다.",
		FailedUpload:         "파일 업로드 중 실패했습니다.",
	})

	return b
}

// Text returns the message for code in lang, falling back to English, then to
// the generic failure text for unknown codes.
func Text(code string, lang Language) string {
	localizer := i18n.NewLocalizer(bundle, string(lang))

	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: code})
	if err != nil {
		msg, err = localizer.Localize(&i18n.LocalizeConfig{MessageID: Failed})
		if err != nil {
			return code
		}
	}
	return msg
}
