package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/model"
)

type MockClient struct {
	Response string
	Err      error
	Calls    int
	Prompt   string
	Images   []string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.GenerateVision(ctx, prompt, nil)
}

func (m *MockClient) GenerateVision(ctx context.Context, prompt string, imageURLs []string) (string, error) {
	m.Calls++
	m.Prompt = prompt
	m.Images = imageURLs
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func testClassifier(client *MockClient) *Classifier {
	cfg := config.Default()
	llmCfg := cfg.LLM
	llmCfg.APIKey = "sk-test-key-for-unit-tests"
	if client == nil {
		return New(nil, cfg.Analysis, config.Default().LLM)
	}
	return New(client, cfg.Analysis, llmCfg)
}

const longStory = "My grandfather told me about crossing the ocean from Ireland in 1952 with nothing but one suitcase and a photograph of his mother."

func TestAnalyzeWithoutCredentialUsesHeuristic(t *testing.T) {
	c := testClassifier(nil)
	result := c.Analyze(context.Background(), "The Crossing", longStory, nil)
	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
}

func TestAnalyzeShortContentSkipsModel(t *testing.T) {
	client := &MockClient{Response: "{}"}
	c := testClassifier(client)

	result := c.Analyze(context.Background(), "Hi", "too short", nil)
	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
	assert.Zero(t, client.Calls, "the model must not be called for short content")
}

func TestAnalyzeParsesAndClampsModelOutput(t *testing.T) {
	client := &MockClient{Response: "```json\n" + `{
		"themes": ["family", "heritage", "immigration", "travel"],
		"emotions": ["nostalgia", "astonishment", "hope"],
		"timePeriod": "1950s",
		"lifeStage": "young-adult",
		"people": [{"name": "Grandfather"}, {"relationship": "mother"}],
		"locations": ["Ireland", "  ", "New York"],
		"keyEvents": ["emigrated by ship"],
		"summary": "Grandfather emigrated from Ireland in 1952."
	}` + "\n```"}
	c := testClassifier(client)

	result := c.Analyze(context.Background(), "The Crossing", longStory, nil)

	assert.Equal(t, model.ConfidenceHigh, result.Confidence)
	assert.Equal(t, []string{"family", "heritage", "immigration"}, result.Themes, "clamped to 3")
	assert.Equal(t, []string{"nostalgia", "hope"}, result.Emotions, "unknown emotion dropped")
	assert.Equal(t, "1950s", result.TimePeriod)
	assert.Equal(t, "young-adult", result.LifeStage)
	assert.Equal(t, []string{"Ireland", "New York"}, result.Locations, "blank entries dropped")
	assert.Equal(t, []model.Person{
		{Name: "Grandfather", Relationship: "unknown"},
		{Name: "Unknown", Relationship: "mother"},
	}, result.People)
	assert.Equal(t, 1, client.Calls)
}

func TestAnalyzeQuotaErrorFallsBack(t *testing.T) {
	client := &MockClient{Err: errors.New("429: rate limit exceeded")}
	c := testClassifier(client)

	result := c.Analyze(context.Background(), "The Crossing", longStory, nil)
	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
	assert.NotEmpty(t, result.Themes)
}

func TestAnalyzeModelErrorFallsBack(t *testing.T) {
	client := &MockClient{Err: errors.New("connection refused")}
	c := testClassifier(client)

	result := c.Analyze(context.Background(), "The Crossing", longStory, nil)
	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
}

func TestAnalyzeUnparseableResponseFallsBack(t *testing.T) {
	client := &MockClient{Response: "I'm sorry, I cannot help with that."}
	c := testClassifier(client)

	result := c.Analyze(context.Background(), "The Crossing", longStory, nil)
	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
}

func TestAnalyzePassesImageURLs(t *testing.T) {
	client := &MockClient{Response: `{"themes": ["family"]}`}
	c := testClassifier(client)

	media := []model.MediaRef{
		{Kind: model.MediaImage, URL: "u1"},
		{Kind: model.MediaImage, URL: "u2"},
		{Kind: model.MediaImage, URL: "u3"},
		{Kind: model.MediaImage, URL: "u4"},
	}
	c.Analyze(context.Background(), "The Crossing", longStory, media)
	assert.Equal(t, []string{"u1", "u2", "u3"}, client.Images, "capped at configured max")
}

func TestAnalyzeIncludesMediaDescriptions(t *testing.T) {
	client := &MockClient{Response: `{"themes": ["family"]}`}
	c := testClassifier(client)

	media := []model.MediaRef{{Kind: model.MediaImage, Description: "a faded photo of the ship"}}
	c.Analyze(context.Background(), "The Crossing", longStory, media)
	assert.True(t, strings.Contains(client.Prompt, "a faded photo of the ship"))
}

// Scenario: a short story with no model credential completes in demo
// mode with usable tags and no locations.
func TestScenarioNoCredentialShortBike(t *testing.T) {
	c := testClassifier(nil)
	content := "I got my first bicycle when I turned seven and rode it down the gravel lane all summer."
	result := c.Analyze(context.Background(), "My First Bike", content, nil)

	assert.Equal(t, model.ConfidenceDemo, result.Confidence)
	assert.NotEmpty(t, result.Themes)
	assert.NotEmpty(t, result.Emotions)
	assert.Empty(t, result.Locations)
}
