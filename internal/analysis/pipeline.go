// Package analysis connects story lifecycle events to the classifier
// through the job queue: it decides which events deserve a job, and it
// is the job handler the queue workers run.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/classifier"
	"github.com/storynest/storynest/internal/core/model"
)

// AnalysisStore is the slice of the persistence layer the pipeline
// needs: the atomic upsert keyed by story.
type AnalysisStore interface {
	UpsertAnalysis(ctx context.Context, a *model.StoryAnalysis) error
}

// Enqueuer schedules a job for background execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *model.AnalysisJob) error
}

type Pipeline struct {
	classifier *classifier.Classifier
	store      AnalysisStore
	cfg        config.AnalysisConfig
	log        *slog.Logger
}

func NewPipeline(c *classifier.Classifier, store AnalysisStore, cfg config.AnalysisConfig) *Pipeline {
	return &Pipeline{
		classifier: c,
		store:      store,
		cfg:        cfg,
		log:        slog.With("component", "analysis"),
	}
}

// ShouldAnalyze applies the trigger gate: global switch, per-event
// trigger flags, the story owner's opt-out, and the minimum content
// length. Manual triggers skip the length check since the user asked
// explicitly.
func (p *Pipeline) ShouldAnalyze(ev model.StoryEvent) bool {
	if !p.cfg.Enabled || ev.AuthorOptOut {
		return false
	}

	switch ev.Kind {
	case model.EventCreate:
		if !p.cfg.Triggers.OnCreate {
			return false
		}
	case model.EventUpdate:
		if !p.cfg.Triggers.OnUpdate {
			return false
		}
	case model.EventMediaUpload:
		if !p.cfg.Triggers.OnMediaUpload {
			return false
		}
	case model.EventManual:
		return p.cfg.Triggers.Manual
	default:
		return false
	}

	return len(ev.Content) >= p.cfg.MinContentLength
}

// Submit enqueues an analysis job for the event if the gate allows it.
// Returns whether a job was queued. The caller does not wait for the
// analysis to run.
func (p *Pipeline) Submit(ctx context.Context, q Enqueuer, ev model.StoryEvent) (bool, error) {
	if !p.ShouldAnalyze(ev) {
		p.log.Debug("event gated out", "event", ev.Kind, "story_id", ev.StoryID)
		return false, nil
	}

	job := &model.AnalysisJob{
		StoryID: ev.StoryID,
		Title:   ev.Title,
		Content: ev.Content,
		Media:   ev.Media,
	}
	if err := q.Enqueue(ctx, job); err != nil {
		return false, err
	}
	return true, nil
}

// RunJob is the queue handler. The classifier cannot fail, so the only
// error source is persistence; on any failure a zero-confidence empty
// record is written best-effort before the error is returned, letting
// the queue's retry policy engage while readers see a terminal marker
// instead of "pending" forever.
func (p *Pipeline) RunJob(ctx context.Context, job *model.AnalysisJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.persistEmpty(ctx, job.StoryID)
			err = fmt.Errorf("analysis panicked for story %s: %v", job.StoryID, r)
		}
	}()

	result := p.classifier.Analyze(ctx, job.Title, job.Content, job.Media)

	record := &model.StoryAnalysis{
		StoryID:        job.StoryID,
		AnalysisResult: result,
		AnalyzedAt:     time.Now().UTC(),
	}
	if err := p.store.UpsertAnalysis(ctx, record); err != nil {
		p.persistEmpty(ctx, job.StoryID)
		return fmt.Errorf("failed to persist analysis for story %s: %w", job.StoryID, err)
	}

	p.log.Info("story analyzed",
		"story_id", job.StoryID,
		"confidence", result.Confidence,
		"themes", result.Themes)
	return nil
}

func (p *Pipeline) persistEmpty(ctx context.Context, storyID string) {
	record := &model.StoryAnalysis{
		StoryID:        storyID,
		AnalysisResult: model.EmptyResult(),
		AnalyzedAt:     time.Now().UTC(),
	}
	if err := p.store.UpsertAnalysis(ctx, record); err != nil {
		p.log.Error("failed to persist empty analysis record", "story_id", storyID, "error", err)
	}
}
