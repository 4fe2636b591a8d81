package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storynest/storynest/internal/core/kinship"
	"github.com/storynest/storynest/internal/core/model"
)

type createCircleRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members"`
}

// CreateCircle registers a family circle with the caller as its admin.
func (s *Server) CreateCircle(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req createCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	circle := &model.Circle{
		ID:        uuid.New().String(),
		Name:      req.Name,
		AdminID:   caller,
		MemberIDs: req.Members,
	}
	if err := s.Store.SaveCircle(c.Request.Context(), circle); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"circle": circle})
}

func (s *Server) GetCircle(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	circle, err := s.Store.GetCircle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"circle": circle})
}

type sendRelationshipRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Type        string `json:"relationshipType" binding:"required"`
}

func (s *Server) SendRelationship(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req sendRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	relation, err := s.Relations.SendRequest(c.Request.Context(), caller, req.RecipientID, model.RelationshipType(req.Type))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"relation": relation})
}

type respondRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (s *Server) RespondRelationship(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	relation, err := s.Relations.Respond(c.Request.Context(), caller, c.Param("id"), *req.Approve)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relation": relation})
}

func (s *Server) PendingRelationships(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	pending, err := s.Relations.PendingFor(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (s *Server) ApprovedRelationships(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	buckets, err := s.Relations.ApprovedFor(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relationships": buckets})
}

// SuggestedGroups clusters the approved relationship graph into
// candidate family circles, a starting point for admins setting one up.
func (s *Server) SuggestedGroups(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	relations, err := s.Store.ApprovedRelations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	groups := kinship.NewSuggester().Groups(relations)
	if groups == nil {
		groups = [][]string{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) PendingRatifications(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	pending, err := s.Relations.PendingForAdmin(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

func (s *Server) RatifyRelationship(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	relation, err := s.Relations.AdminApprove(c.Request.Context(), caller, c.Param("id"), c.Param("relationId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relation": relation})
}

func (s *Server) AdminRejectRelationship(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	if err := s.Relations.AdminReject(c.Request.Context(), caller, c.Param("id"), c.Param("relationId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
