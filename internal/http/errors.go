package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/service"
)

// writeError traduce errores de servicio a status HTTP. Lo inesperado se
// registra y se responde con un mensaje generico.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	default:
		logger.Error(op+" failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Debug("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func parsePage(c *gin.Context) (domain.Page, error) {
	var p domain.Page
	var err error
	if raw := c.Query("limit"); raw != "" {
		if p.Limit, err = strconv.Atoi(raw); err != nil || p.Limit < 0 {
			return domain.Page{}, errors.New("limit must be a non-negative integer")
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if p.Offset, err = strconv.Atoi(raw); err != nil || p.Offset < 0 {
			return domain.Page{}, errors.New("offset must be a non-negative integer")
		}
	}
	return p.Normalize(), nil
}

// parseDate acepta RFC3339 o una fecha simple (2006-01-02).
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("date must be RFC3339 or YYYY-MM-DD")
	}
	return t.UTC(), nil
}

func errInvalidQuery(param string) error {
	return fmt.Errorf("%s is invalid", param)
}
