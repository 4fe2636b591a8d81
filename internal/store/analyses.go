package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storynest/storynest/internal/core/model"
)

// UpsertAnalysis writes the analysis for a story, replacing any prior
// record wholesale. Safe under redelivery: the MERGE is atomic per
// write and the latest write wins.
func (s *Store) UpsertAnalysis(ctx context.Context, a *model.StoryAnalysis) error {
	people, err := json.Marshal(a.People)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}

	params := map[string]interface{}{
		"story_id":    a.StoryID,
		"themes":      a.Themes,
		"emotions":    a.Emotions,
		"time_period": a.TimePeriod,
		"life_stage":  a.LifeStage,
		"locations":   a.Locations,
		"key_events":  a.KeyEvents,
		"people":      string(people),
		"summary":     a.Summary,
		"confidence":  string(a.Confidence),
		"analyzed_at": formatTime(a.AnalyzedAt),
	}

	if _, err := s.driver.ExecuteQuery(ctx, UpsertAnalysisQuery, params); err != nil {
		return fmt.Errorf("failed to upsert analysis for story %s: %w", a.StoryID, err)
	}
	return nil
}

// GetAnalysis returns the analysis for a story, or ErrNotFound while the
// story is still pending analysis.
func (s *Store) GetAnalysis(ctx context.Context, storyID string) (*model.StoryAnalysis, error) {
	result, err := s.driver.ExecuteQuery(ctx, GetAnalysisQuery, map[string]interface{}{
		"story_id": storyID,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	rec := result.Records[0]
	analysis := &model.StoryAnalysis{
		StoryID: recordString(rec, "story_id"),
		AnalysisResult: model.AnalysisResult{
			Themes:     recordStrings(rec, "themes"),
			Emotions:   recordStrings(rec, "emotions"),
			TimePeriod: recordString(rec, "time_period"),
			LifeStage:  recordString(rec, "life_stage"),
			Locations:  recordStrings(rec, "locations"),
			KeyEvents:  recordStrings(rec, "key_events"),
			Summary:    recordString(rec, "summary"),
			Confidence: model.Confidence(recordString(rec, "confidence")),
		},
		AnalyzedAt: recordTime(rec, "analyzed_at"),
	}

	analysis.People = []model.Person{}
	if raw := recordString(rec, "people"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &analysis.People); err != nil {
			return nil, fmt.Errorf("failed to decode people for story %s: %w", storyID, err)
		}
	}
	return analysis, nil
}
