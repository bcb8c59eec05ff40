package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/service"
)

// ApplicationHandler expone las postulaciones del usuario y sus documentos y tareas.
type ApplicationHandler struct {
	logger *zap.Logger
	svc    *service.ApplicationService
}

func NewApplicationHandler(logger *zap.Logger, svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{logger: logger, svc: svc}
}

// List maneja GET /api/applications.
func (h *ApplicationHandler) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	apps, err := h.svc.List(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, "list applications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// Create maneja POST /api/applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req service.ApplicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create application", err)
		return
	}
	detail, err := h.svc.Create(c.Request.Context(), identity, req)
	if err != nil {
		writeError(c, h.logger, "create application", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": detail})
}

// Get maneja GET /api/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	detail, err := h.svc.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "get application", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": detail})
}

// Update maneja PUT /api/applications/:id.
func (h *ApplicationHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var patch domain.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update application", err)
		return
	}
	app, err := h.svc.Update(c.Request.Context(), identity, c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, "update application", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

// Delete maneja DELETE /api/applications/:id.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		writeError(c, h.logger, "delete application", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ApplicationHandler) ListDocuments(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	docs, err := h.svc.ListDocuments(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "list documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *ApplicationHandler) AddDocument(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req service.DocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add document", err)
		return
	}
	doc, err := h.svc.AddDocument(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, "add document", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (h *ApplicationHandler) UpdateDocument(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var patch domain.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update document", err)
		return
	}
	doc, err := h.svc.UpdateDocument(c.Request.Context(), identity, c.Param("id"), c.Param("docId"), patch)
	if err != nil {
		writeError(c, h.logger, "update document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *ApplicationHandler) DeleteDocument(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteDocument(c.Request.Context(), identity, c.Param("id"), c.Param("docId")); err != nil {
		writeError(c, h.logger, "delete document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ApplicationHandler) ListTasks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *ApplicationHandler) AddTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "add task", err)
		return
	}
	task, err := h.svc.AddTask(c.Request.Context(), identity, c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, "add task", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *ApplicationHandler) UpdateTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update task", err)
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), identity, c.Param("id"), c.Param("taskId"), patch)
	if err != nil {
		writeError(c, h.logger, "update task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *ApplicationHandler) DeleteTask(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), identity, c.Param("id"), c.Param("taskId")); err != nil {
		writeError(c, h.logger, "delete task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
