package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storynest/storynest/internal/core/model"
	"github.com/storynest/storynest/internal/store"
)

type createStoryRequest struct {
	CircleID       string           `json:"circleId" binding:"required"`
	Title          string           `json:"title"`
	Content        string           `json:"content" binding:"required"`
	Media          []model.RawMedia `json:"media"`
	AnalysisOptOut bool             `json:"analysisOptOut"`
}

func (s *Server) CreateStory(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	story := &model.Story{
		ID:        uuid.New().String(),
		CircleID:  req.CircleID,
		AuthorID:  caller,
		Title:     req.Title,
		Content:   req.Content,
		Media:     model.NormalizeMedia(req.Media),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.SaveStory(c.Request.Context(), story); err != nil {
		slog.Error("failed to save story", "error", err)
		writeError(c, err)
		return
	}

	queued := s.submitEvent(c, model.StoryEvent{
		Kind:         model.EventCreate,
		StoryID:      story.ID,
		Title:        story.Title,
		Content:      story.Content,
		Media:        story.Media,
		AuthorOptOut: req.AnalysisOptOut,
	})

	c.JSON(http.StatusCreated, gin.H{"story": story, "analysisQueued": queued})
}

type updateStoryRequest struct {
	Title          string           `json:"title"`
	Content        string           `json:"content" binding:"required"`
	Media          []model.RawMedia `json:"media"`
	AnalysisOptOut bool             `json:"analysisOptOut"`
}

func (s *Server) UpdateStory(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req updateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	story, err := s.Store.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if story.AuthorID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may edit a story"})
		return
	}

	story.Title = req.Title
	story.Content = req.Content
	if req.Media != nil {
		story.Media = model.NormalizeMedia(req.Media)
	}
	story.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveStory(c.Request.Context(), story); err != nil {
		writeError(c, err)
		return
	}

	queued := s.submitEvent(c, model.StoryEvent{
		Kind:         model.EventUpdate,
		StoryID:      story.ID,
		Title:        story.Title,
		Content:      story.Content,
		Media:        story.Media,
		AuthorOptOut: req.AnalysisOptOut,
	})

	c.JSON(http.StatusOK, gin.H{"story": story, "analysisQueued": queued})
}

type attachMediaRequest struct {
	Media          []model.RawMedia `json:"media" binding:"required"`
	AnalysisOptOut bool             `json:"analysisOptOut"`
}

func (s *Server) AttachMedia(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req attachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	story, err := s.Store.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if story.AuthorID != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may attach media"})
		return
	}

	story.Media = append(story.Media, model.NormalizeMedia(req.Media)...)
	story.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveStory(c.Request.Context(), story); err != nil {
		writeError(c, err)
		return
	}

	queued := s.submitEvent(c, model.StoryEvent{
		Kind:         model.EventMediaUpload,
		StoryID:      story.ID,
		Title:        story.Title,
		Content:      story.Content,
		Media:        story.Media,
		AuthorOptOut: req.AnalysisOptOut,
	})

	c.JSON(http.StatusOK, gin.H{"story": story, "analysisQueued": queued})
}

// TriggerAnalysis is the manual trigger: re-analyze an existing story
// on demand.
func (s *Server) TriggerAnalysis(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}

	story, err := s.Store.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	queued := s.submitEvent(c, model.StoryEvent{
		Kind:    model.EventManual,
		StoryID: story.ID,
		Title:   story.Title,
		Content: story.Content,
		Media:   story.Media,
	})
	if !queued {
		c.JSON(http.StatusConflict, gin.H{"error": "analysis is disabled"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (s *Server) GetStory(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	story, err := s.Store.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// GetAnalysis returns the stored analysis. Absence of a record is the
// pending signal; no placeholder row is ever created.
func (s *Server) GetAnalysis(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	a, err := s.Store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"status": "pending"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": a})
}

// submitEvent runs the trigger gate and enqueues. Enqueue failures are
// logged but do not fail the request: analysis is best-effort from the
// caller's point of view.
func (s *Server) submitEvent(c *gin.Context, ev model.StoryEvent) bool {
	queued, err := s.Pipeline.Submit(c.Request.Context(), s.Queue, ev)
	if err != nil {
		slog.Error("failed to enqueue analysis job", "story_id", ev.StoryID, "error", err)
		return false
	}
	return queued
}
