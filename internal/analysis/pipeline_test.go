package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/classifier"
	"github.com/storynest/storynest/internal/core/model"
)

type fakeStore struct {
	records []*model.StoryAnalysis
	failN   int // fail the first N upserts
}

func (s *fakeStore) UpsertAnalysis(ctx context.Context, a *model.StoryAnalysis) error {
	if s.failN > 0 {
		s.failN--
		return errors.New("graph unavailable")
	}
	s.records = append(s.records, a)
	return nil
}

type fakeQueue struct {
	jobs []*model.AnalysisJob
	err  error
}

func (q *fakeQueue) Enqueue(ctx context.Context, job *model.AnalysisJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func testPipeline(store *fakeStore) *Pipeline {
	cfg := config.Default().Analysis
	c := classifier.New(nil, cfg, config.Default().LLM)
	return NewPipeline(c, store, cfg)
}

var longContent = strings.Repeat("a memory worth keeping ", 5)

func TestShouldAnalyzeTriggers(t *testing.T) {
	p := testPipeline(&fakeStore{})

	cases := []struct {
		name string
		ev   model.StoryEvent
		want bool
	}{
		{"create with enough content", model.StoryEvent{Kind: model.EventCreate, Content: longContent}, true},
		{"create too short", model.StoryEvent{Kind: model.EventCreate, Content: "short"}, false},
		{"update disabled by default", model.StoryEvent{Kind: model.EventUpdate, Content: longContent}, false},
		{"media upload", model.StoryEvent{Kind: model.EventMediaUpload, Content: longContent}, true},
		{"manual skips length check", model.StoryEvent{Kind: model.EventManual, Content: "short"}, true},
		{"author opt-out", model.StoryEvent{Kind: model.EventCreate, Content: longContent, AuthorOptOut: true}, false},
		{"unknown kind", model.StoryEvent{Kind: "archived", Content: longContent}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.ShouldAnalyze(tc.ev))
		})
	}
}

func TestShouldAnalyzeGlobalSwitch(t *testing.T) {
	cfg := config.Default().Analysis
	cfg.Enabled = false
	c := classifier.New(nil, cfg, config.Default().LLM)
	p := NewPipeline(c, &fakeStore{}, cfg)

	assert.False(t, p.ShouldAnalyze(model.StoryEvent{Kind: model.EventManual, Content: longContent}))
}

func TestSubmitQueuesWhenGatePasses(t *testing.T) {
	p := testPipeline(&fakeStore{})
	q := &fakeQueue{}

	queued, err := p.Submit(context.Background(), q, model.StoryEvent{
		StoryID: "s1",
		Kind:    model.EventCreate,
		Title:   "Sunday Dinners",
		Content: longContent,
	})
	require.NoError(t, err)
	assert.True(t, queued)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, "s1", q.jobs[0].StoryID)
	assert.Equal(t, "Sunday Dinners", q.jobs[0].Title)
}

func TestSubmitGatedEventDoesNotQueue(t *testing.T) {
	p := testPipeline(&fakeStore{})
	q := &fakeQueue{}

	queued, err := p.Submit(context.Background(), q, model.StoryEvent{
		StoryID: "s1",
		Kind:    model.EventUpdate,
		Content: longContent,
	})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Empty(t, q.jobs)
}

func TestSubmitPropagatesEnqueueError(t *testing.T) {
	p := testPipeline(&fakeStore{})
	q := &fakeQueue{err: errors.New("redis down")}

	queued, err := p.Submit(context.Background(), q, model.StoryEvent{
		StoryID: "s1",
		Kind:    model.EventCreate,
		Content: longContent,
	})
	assert.Error(t, err)
	assert.False(t, queued)
}

func TestRunJobPersistsResult(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(store)

	err := p.RunJob(context.Background(), &model.AnalysisJob{
		StoryID: "s1",
		Title:   "The Crossing",
		Content: longContent,
	})
	require.NoError(t, err)
	require.Len(t, store.records, 1)
	assert.Equal(t, "s1", store.records[0].StoryID)
	assert.Equal(t, model.ConfidenceDemo, store.records[0].Confidence)
	assert.False(t, store.records[0].AnalyzedAt.IsZero())
}

func TestRunJobStoreFailureWritesEmptyRecord(t *testing.T) {
	store := &fakeStore{failN: 1}
	p := testPipeline(store)

	err := p.RunJob(context.Background(), &model.AnalysisJob{
		StoryID: "s1",
		Content: longContent,
	})
	require.Error(t, err, "the error must surface so the queue retries")
	require.Len(t, store.records, 1, "a zero-confidence marker is written best-effort")
	assert.Equal(t, model.ConfidenceNone, store.records[0].Confidence)
	assert.Equal(t, "s1", store.records[0].StoryID)
}

func TestRunJobStoreFullyDownReturnsError(t *testing.T) {
	store := &fakeStore{failN: 2}
	p := testPipeline(store)

	err := p.RunJob(context.Background(), &model.AnalysisJob{StoryID: "s1", Content: longContent})
	assert.Error(t, err)
	assert.Empty(t, store.records)
}
