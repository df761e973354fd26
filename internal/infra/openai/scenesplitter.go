package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diaryTvideo-Team/DiaryTvideo/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const sceneSplitPrompt = `You are an expert at splitting a diary entry into scenes for a narrated video.

Read the diary below and split it into 1-6 scenes.
Each scene needs:
- scene: scene number (starting from 1)
- description: a detailed visual description for image generation (English)
- text: the narration text for that scene (same language as the diary)

Also infer:
- character: {"description": a visual description of the diary's author for consistent illustration, "reason": why you inferred it}
- voice: "male" or "female", matching the inferred author

Respond with JSON only.

Title: %s
Content: %s

Response shape:
{
  "character": {"description": "...", "reason": "..."},
  "voice": "female",
  "scenes": [{"scene": 1, "description": "...", "text": "..."}]
}`

// Fallback profiles used when the model omits the character block. Keeps the
// job alive instead of failing scene analysis over a cosmetic field.
var defaultCharacterProfiles = [4]entity.CharacterProfile{
	{Description: "A young adult with short dark hair, casual hoodie, gentle expression", InferenceRationale: "default profile"},
	{Description: "A young adult with shoulder-length brown hair, cozy cardigan, warm smile", InferenceRationale: "default profile"},
	{Description: "A person in their twenties with glasses, simple shirt, thoughtful look", InferenceRationale: "default profile"},
	{Description: "A person with tied-back hair, comfortable sweater, calm expression", InferenceRationale: "default profile"},
}

type SceneSplitter struct {
	client *openai.Client
	logger *zap.Logger
}

func NewSceneSplitter(client *openai.Client, logger *zap.Logger) *SceneSplitter {
	return &SceneSplitter{client: client, logger: logger}
}

type sceneSplitPayload struct {
	Character struct {
		Description string `json:"description"`
		Reason      string `json:"reason"`
	} `json:"character"`
	Voice  string `json:"voice"`
	Scenes []struct {
		Scene       int    `json:"scene"`
		Description string `json:"description"`
		Text        string `json:"text"`
	} `json:"scenes"`
}

func (s *SceneSplitter) SplitScenes(ctx context.Context, title, content string) (*entity.SceneSplit, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(sceneSplitPrompt, title, content)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("scene split completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("scene split returned no choices")
	}

	var payload sceneSplitPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("parse scene split response: %w", err)
	}

	split, err := buildSceneSplit(payload, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scenes split",
		zap.Int("scene_count", len(split.Scenes)),
		zap.String("voice", string(split.Voice)),
	)
	return split, nil
}

// buildSceneSplit validates the model output. Malformed scenes fail the job;
// a missing character profile is repaired with a fixed default instead.
func buildSceneSplit(payload sceneSplitPayload, content string) (*entity.SceneSplit, error) {
	if len(payload.Scenes) == 0 {
		return nil, fmt.Errorf("scene split produced no scenes")
	}
	if len(payload.Scenes) > 6 {
		payload.Scenes = payload.Scenes[:6]
	}

	scenes := make([]entity.Scene, 0, len(payload.Scenes))
	for i, raw := range payload.Scenes {
		desc := strings.TrimSpace(raw.Description)
		text := strings.TrimSpace(raw.Text)
		if desc == "" || text == "" {
			return nil, fmt.Errorf("scene %d is malformed: empty description or narration", i+1)
		}
		scenes = append(scenes, entity.Scene{
			Index:             i + 1,
			VisualDescription: desc,
			NarrationText:     text,
		})
	}

	character := entity.CharacterProfile{
		Description:        strings.TrimSpace(payload.Character.Description),
		InferenceRationale: strings.TrimSpace(payload.Character.Reason),
	}
	if character.Description == "" {
		character = defaultCharacterProfiles[len(content)%len(defaultCharacterProfiles)]
	}

	voice := entity.Voice(payload.Voice)
	if voice != entity.VoiceMale && voice != entity.VoiceFemale {
		voice = entity.VoiceFemale
	}

	return &entity.SceneSplit{Character: character, Voice: voice, Scenes: scenes}, nil
}
