// Package classifier turns story text and media into structured tags.
// Analyze never fails: when the model is unconfigured, unreachable, or
// over quota, it degrades to the offline heuristic instead.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/common"
	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/core/taxonomy"
	"github.com/storynest/storynest/internal/llm"
	"github.com/storynest/storynest/internal/metrics"
)

type Classifier struct {
	llm    llm.Client
	cfg    config.AnalysisConfig
	llmCfg config.LLMConfig
	log    *slog.Logger
}

// New builds a classifier. client may be nil when no provider is
// configured; every call then takes the heuristic path.
func New(client llm.Client, cfg config.AnalysisConfig, llmCfg config.LLMConfig) *Classifier {
	return &Classifier{
		llm:    client,
		cfg:    cfg,
		llmCfg: llmCfg,
		log:    slog.With("component", "classifier"),
	}
}

type limitSet struct {
	maxThemes     int
	maxEmotions   int
	maxLocations  int
	maxEvents     int
	maxPeople     int
	summaryLength int
}

func (c *Classifier) limits() limitSet {
	return limitSet{
		maxThemes:     c.cfg.Limits.MaxThemes,
		maxEmotions:   c.cfg.Limits.MaxEmotions,
		maxLocations:  c.cfg.Limits.MaxLocations,
		maxEvents:     c.cfg.Limits.MaxEvents,
		maxPeople:     c.cfg.Limits.MaxPeople,
		summaryLength: c.cfg.Limits.SummaryLength,
	}
}

// Analyze classifies a story. It always returns a structurally valid
// result and never an error; failures fall back internally.
func (c *Classifier) Analyze(ctx context.Context, title, content string, media []model.MediaRef) model.AnalysisResult {
	limits := c.limits()

	if c.llm == nil || !c.llmCfg.HasCredential() {
		metrics.ClassifierFallbacks.WithLabelValues("no_credential").Inc()
		return heuristicAnalyze(title, content, limits)
	}

	combined := combineText(title, content, media)
	if len(combined) < c.cfg.MinContentLength {
		metrics.ClassifierFallbacks.WithLabelValues("too_short").Inc()
		return heuristicAnalyze(title, content, limits)
	}

	var images []string
	if c.cfg.Images.Enabled {
		images = model.ImageURLs(media, c.cfg.Images.MaxImages)
	}

	response, err := c.llm.GenerateVision(ctx, buildPrompt(combined, limits), images)
	if err != nil {
		reason := "model_error"
		if llm.IsQuotaErr(err) {
			reason = "quota"
		}
		metrics.ClassifierFallbacks.WithLabelValues(reason).Inc()
		c.log.Warn("model call failed, using heuristic", "reason", reason, "error", err)
		return heuristicAnalyze(title, content, limits)
	}

	raw, err := common.ParseJSON[rawAnalysis](response)
	if err != nil {
		metrics.ClassifierFallbacks.WithLabelValues("bad_response").Inc()
		c.log.Warn("unparseable model response, using heuristic", "error", err)
		return heuristicAnalyze(title, content, limits)
	}

	result := clampResult(raw, limits)
	result.Confidence = model.ConfidenceHigh
	return result
}

// combineText assembles the text block sent to the model: title plus
// body, followed by any non-empty media descriptions as context lines.
func combineText(title, content string, media []model.MediaRef) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(content)
	for _, m := range media {
		if m.Description == "" {
			continue
		}
		sb.WriteString("\nMedia: ")
		sb.WriteString(m.Description)
	}
	return sb.String()
}

func buildPrompt(text string, limits limitSet) string {
	return fmt.Sprintf(`You are an archivist tagging family memories. Analyze the story below and respond with ONLY a JSON object:
{
  "themes": up to %d values from [%s],
  "emotions": up to %d values from [%s],
  "timePeriod": one of [%s] or "unknown",
  "lifeStage": one of [%s] or "unknown",
  "people": up to %d objects {"name": string, "relationship": string},
  "locations": up to %d place names mentioned,
  "keyEvents": up to %d short event phrases,
  "summary": one sentence, at most %d characters
}

Story:
%s`,
		limits.maxThemes, strings.Join(taxonomy.Themes, ", "),
		limits.maxEmotions, strings.Join(taxonomy.Emotions, ", "),
		strings.Join(taxonomy.TimePeriods, ", "),
		strings.Join(taxonomy.LifeStages, ", "),
		limits.maxPeople, limits.maxLocations, limits.maxEvents,
		limits.summaryLength, text)
}
