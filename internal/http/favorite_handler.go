package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/service"
)

type FavoriteHandler struct {
	logger *zap.Logger
	svc    *service.FavoriteService
}

func NewFavoriteHandler(logger *zap.Logger, svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{logger: logger, svc: svc}
}

// List maneja GET /api/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	favs, err := h.svc.List(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, "list favorites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// Add maneja POST /api/favorites.
func (h *FavoriteHandler) Add(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req struct {
		ScholarshipID string `json:"scholarship_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add favorite", err)
		return
	}
	fav, err := h.svc.Add(c.Request.Context(), identity, req.ScholarshipID)
	if err != nil {
		writeError(c, h.logger, "add favorite", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"favorite": fav})
}

// Remove maneja DELETE /api/favorites/:scholarshipId.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), identity, c.Param("scholarshipId")); err != nil {
		writeError(c, h.logger, "remove favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
