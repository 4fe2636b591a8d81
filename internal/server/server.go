// Package server exposes the StoryNest core over HTTP. Identity
// arrives pre-resolved in the X-User-ID header; authentication itself
// is an upstream concern.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storynest/storynest/internal/analysis"
	"github.com/storynest/storynest/internal/core/relations"
	"github.com/storynest/storynest/internal/queue"
	"github.com/storynest/storynest/internal/store"
)

type Server struct {
	Store     *store.Store
	Relations *relations.Service
	Pipeline  *analysis.Pipeline
	Queue     *queue.Queue
}

func New(st *store.Store, rel *relations.Service, pipeline *analysis.Pipeline, q *queue.Queue) *Server {
	return &Server{
		Store:     st,
		Relations: rel,
		Pipeline:  pipeline,
		Queue:     q,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/circles", s.CreateCircle)
	r.GET("/circles/:id", s.GetCircle)

	r.POST("/stories", s.CreateStory)
	r.GET("/stories/:id", s.GetStory)
	r.PUT("/stories/:id", s.UpdateStory)
	r.POST("/stories/:id/media", s.AttachMedia)
	r.POST("/stories/:id/analyze", s.TriggerAnalysis)
	r.GET("/stories/:id/analysis", s.GetAnalysis)

	r.POST("/relationships", s.SendRelationship)
	r.POST("/relationships/:id/respond", s.RespondRelationship)
	r.GET("/relationships/pending", s.PendingRelationships)
	r.GET("/relationships", s.ApprovedRelationships)
	r.GET("/relationships/groups", s.SuggestedGroups)

	r.GET("/circles/:id/relationships/pending", s.PendingRatifications)
	r.POST("/circles/:id/relationships/:relationId/ratify", s.RatifyRelationship)
	r.DELETE("/circles/:id/relationships/:relationId", s.AdminRejectRelationship)

	return r
}

// callerID extracts the resolved user identity. Requests without it are
// rejected before any handler logic runs.
func callerID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return "", false
	}
	return id, true
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relations.ErrInvalidType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, relations.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, relations.ErrNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, relations.ErrConflict), errors.Is(err, store.ErrDuplicatePair):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
