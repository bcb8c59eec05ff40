package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, gate *Gate, h Handlers) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", h.Health.Healthz)

	api := r.Group("/api", gate.Middleware())

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.PUT("/profile", h.Auth.UpdateProfile)
	auth.POST("/token", h.Auth.IssueToken)

	api.GET("/scholarships", h.Scholarships.Search)
	api.GET("/scholarships/:id", h.Scholarships.Get)
	api.GET("/universities", h.Universities.Search)
	api.GET("/universities/:id", h.Universities.Get)
	api.GET("/reference", h.Reference.All)
	api.GET("/reference/:kind", h.Reference.List)

	apps := api.Group("/applications")
	apps.GET("", h.Applications.List)
	apps.POST("", h.Applications.Create)
	apps.GET("/:id", h.Applications.Get)
	apps.PUT("/:id", h.Applications.Update)
	apps.DELETE("/:id", h.Applications.Delete)
	apps.GET("/:id/documents", h.Applications.ListDocuments)
	apps.POST("/:id/documents", h.Applications.AddDocument)
	apps.PUT("/:id/documents/:docId", h.Applications.UpdateDocument)
	apps.DELETE("/:id/documents/:docId", h.Applications.DeleteDocument)
	apps.GET("/:id/tasks", h.Applications.ListTasks)
	apps.POST("/:id/tasks", h.Applications.AddTask)
	apps.PUT("/:id/tasks/:taskId", h.Applications.UpdateTask)
	apps.DELETE("/:id/tasks/:taskId", h.Applications.DeleteTask)

	favs := api.Group("/favorites")
	favs.GET("", h.Favorites.List)
	favs.POST("", h.Favorites.Add)
	favs.DELETE("/:scholarshipId", h.Favorites.Remove)

	admin := api.Group("/admin", requireAdmin())
	admin.POST("/scholarships", h.Scholarships.Create)
	admin.PUT("/scholarships/:id", h.Scholarships.Update)
	admin.DELETE("/scholarships/:id", h.Scholarships.Delete)
	admin.POST("/universities", h.Universities.Create)
	admin.PUT("/universities/:id", h.Universities.Update)
	admin.DELETE("/universities/:id", h.Universities.Delete)
	admin.POST("/reference/:kind", h.Reference.Create)
	admin.PUT("/reference/:kind/:id", h.Reference.Update)
	admin.DELETE("/reference/:kind/:id", h.Reference.Delete)
	admin.GET("/analytics", h.Analytics.Summary)

	r.NoRoute(gate.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
