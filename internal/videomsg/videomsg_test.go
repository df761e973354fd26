package videomsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextResolvesPerLanguage(t *testing.T) {
	assert.Equal(t, "Completed!", Text(Completed, English))
	assert.Equal(t, "완료!", Text(Completed, Korean))
}

func TestTextUnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "Composing video...", Text(VideoComposing, Language("fr")))
}

func TestTextUnknownCodeFallsBackToGenericFailure(t *testing.T) {
	assert.Equal(t, "Video generation failed.", Text("SOMETHING_NEW", English))
	assert.Equal(t, "영상 생성에 실패했습니다.", Text("SOMETHING_NEW", Korean))
}

func TestEveryCodeHasBothLanguages(t *testing.T) {
	for _, code := range Codes {
		en := Text(code, English)
		ko := Text(code, Korean)
		assert.NotEmpty(t, en, "english text missing for %s", code)
		assert.NotEmpty(t, ko, "korean text missing for %s", code)
		assert.NotEqual(t, en, ko, "translations must differ for %s", code)
		assert.NotEqual(t, code, en, "code %s must not leak as its own text", code)
	}
}
