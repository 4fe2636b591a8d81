package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storynest/storynest/internal/analysis"
	"github.com/storynest/storynest/internal/config"
	"github.com/storynest/storynest/internal/core/classifier"
	"github.com/storynest/storynest/internal/core/relations"
	"github.com/storynest/storynest/internal/queue"
	"github.com/storynest/storynest/internal/store"
)

// stubDriver routes each Cypher query through a test-provided function.
type stubDriver struct {
	fn func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

func (d *stubDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return d.fn(query, params)
}

func (d *stubDriver) BuildIndices(ctx context.Context) error { return nil }
func (d *stubDriver) Close(ctx context.Context) error        { return nil }

// echoDriver answers writes by echoing the id param and reads with no
// rows, which is enough for the handler-level paths under test.
func echoDriver() *stubDriver {
	return &stubDriver{fn: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		id, _ := params["id"].(string)
		if id == "" {
			return neo4j.EagerResult{}, nil
		}
		if strings.Contains(query, "MATCH") {
			return neo4j.EagerResult{}, nil
		}
		return neo4j.EagerResult{Records: []*neo4j.Record{
			{Keys: []string{"id"}, Values: []interface{}{id}},
		}}, nil
	}}
}

func testRouter(t *testing.T, driver store.GraphDriver) (*gin.Engine, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.Default()
	cfg.Queue.EnqueueDelaySeconds = 0

	st := store.New(driver)
	cls := classifier.New(nil, cfg.Analysis, cfg.LLM)
	pipeline := analysis.NewPipeline(cls, st, cfg.Analysis)
	q := queue.New(rdb, cfg.Queue, pipeline.RunJob)
	rel := relations.NewService(st, st)

	return New(st, rel, pipeline, q).SetupRouter(), rdb
}

func doJSON(router *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingIdentityHeader(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/stories", "", `{"circleId":"c1","content":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateStoryQueuesAnalysis(t *testing.T) {
	router, rdb := testRouter(t, echoDriver())

	body := `{"circleId":"c1","title":"Sunday Dinners","content":"` +
		strings.Repeat("every sunday we gathered at the long table ", 3) + `"}`
	w := doJSON(router, http.MethodPost, "/stories", "alice", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		AnalysisQueued bool `json:"analysisQueued"`
		Story          struct {
			ID       string `json:"id"`
			AuthorID string `json:"authorId"`
		} `json:"story"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AnalysisQueued)
	assert.Equal(t, "alice", resp.Story.AuthorID)

	ready, err := rdb.LLen(context.Background(), "storynest:analysis:ready").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), ready)
}

func TestCreateStoryShortContentNotQueued(t *testing.T) {
	router, rdb := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/stories", "alice", `{"circleId":"c1","content":"too short"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		AnalysisQueued bool `json:"analysisQueued"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.AnalysisQueued)

	ready, err := rdb.LLen(context.Background(), "storynest:analysis:ready").Result()
	require.NoError(t, err)
	assert.Zero(t, ready)
}

func TestCreateStoryOptOutNotQueued(t *testing.T) {
	router, rdb := testRouter(t, echoDriver())

	body := `{"circleId":"c1","analysisOptOut":true,"content":"` +
		strings.Repeat("a long enough story body to pass the gate ", 3) + `"}`
	w := doJSON(router, http.MethodPost, "/stories", "alice", body)
	require.Equal(t, http.StatusCreated, w.Code)

	ready, err := rdb.LLen(context.Background(), "storynest:analysis:ready").Result()
	require.NoError(t, err)
	assert.Zero(t, ready)
}

func TestCreateStoryRejectsMissingContent(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/stories", "alice", `{"circleId":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAnalysisPending(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodGet, "/stories/s1/analysis", "alice", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
}

func TestSendRelationshipInvalidType(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/relationships", "alice",
		`{"recipientId":"bob","relationshipType":"Cousin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendRelationshipSelfConflict(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/relationships", "alice",
		`{"recipientId":"alice","relationshipType":"Spouse"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondMissingRelationIs404(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/relationships/no-such/respond", "bob", `{"approve":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondRequiresApproveField(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/relationships/r1/respond", "bob", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestedGroupsEmptyGraph(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodGet, "/relationships/groups", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Groups [][]string `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Groups)
}

func TestRatifyUnknownCircleIs404(t *testing.T) {
	router, _ := testRouter(t, echoDriver())

	w := doJSON(router, http.MethodPost, "/circles/nope/relationships/r1/ratify", "carol", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
