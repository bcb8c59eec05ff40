package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/service"
)

type AnalyticsHandler struct {
	logger *zap.Logger
	svc    *service.AnalyticsService
}

func NewAnalyticsHandler(logger *zap.Logger, svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{logger: logger, svc: svc}
}

// Summary maneja GET /api/admin/analytics.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "analytics summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Pinger es satisfecho por *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger *zap.Logger
	db     Pinger
}

func NewHealthHandler(logger *zap.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// Healthz maneja GET /healthz.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
