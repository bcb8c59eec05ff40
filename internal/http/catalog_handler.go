package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/service"
)

// ScholarshipHandler expone la busqueda publica y el ABM admin de becas.
type ScholarshipHandler struct {
	logger *zap.Logger
	svc    *service.ScholarshipService
}

func NewScholarshipHandler(logger *zap.Logger, svc *service.ScholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{logger: logger, svc: svc}
}

// Search maneja GET /api/scholarships.
func (h *ScholarshipHandler) Search(c *gin.Context) {
	filter, err := scholarshipFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, "search scholarships", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func scholarshipFilter(c *gin.Context) (domain.ScholarshipFilter, error) {
	page, err := parsePage(c)
	if err != nil {
		return domain.ScholarshipFilter{}, err
	}
	f := domain.ScholarshipFilter{
		Query:         c.Query("q"),
		CountryCode:   c.Query("country"),
		FieldID:       c.Query("field"),
		DegreeLevelID: c.Query("degree"),
		UniversityID:  c.Query("university"),
		Page:          page,
	}
	if raw := c.Query("min_amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.ScholarshipFilter{}, errInvalidQuery("min_amount")
		}
		f.MinAmountCents = amount
	}
	if raw := c.Query("deadline_after"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return domain.ScholarshipFilter{}, err
		}
		f.DeadlineAfter = &t
	}
	// Las becas cerradas solo se listan para admin.
	if identity, ok := IdentityFrom(c); ok && identity.IsAdmin() {
		f.IncludeClosed = c.Query("include_closed") == "true"
	}
	return f, nil
}

// Get maneja GET /api/scholarships/:id.
func (h *ScholarshipHandler) Get(c *gin.Context) {
	sch, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "get scholarship", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scholarship": sch})
}

// Create maneja POST /api/admin/scholarships.
func (h *ScholarshipHandler) Create(c *gin.Context) {
	var req domain.ScholarshipPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create scholarship", err)
		return
	}
	sch, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "create scholarship", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"scholarship": sch})
}

// Update maneja PUT /api/admin/scholarships/:id.
func (h *ScholarshipHandler) Update(c *gin.Context) {
	var patch domain.ScholarshipPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update scholarship", err)
		return
	}
	sch, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, "update scholarship", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scholarship": sch})
}

// Delete maneja DELETE /api/admin/scholarships/:id.
func (h *ScholarshipHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, "delete scholarship", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type UniversityHandler struct {
	logger *zap.Logger
	svc    *service.UniversityService
}

func NewUniversityHandler(logger *zap.Logger, svc *service.UniversityService) *UniversityHandler {
	return &UniversityHandler{logger: logger, svc: svc}
}

func (h *UniversityHandler) Search(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Search(c.Request.Context(), domain.UniversityFilter{
		Query:       c.Query("q"),
		CountryCode: c.Query("country"),
		Page:        page,
	})
	if err != nil {
		writeError(c, h.logger, "search universities", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *UniversityHandler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "get university", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"university": u})
}

func (h *UniversityHandler) Create(c *gin.Context) {
	var req domain.UniversityPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create university", err)
		return
	}
	u, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "create university", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"university": u})
}

func (h *UniversityHandler) Update(c *gin.Context) {
	var patch domain.UniversityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update university", err)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.logger, "update university", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"university": u})
}

func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, "delete university", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ReferenceHandler expone paises, areas y niveles.
type ReferenceHandler struct {
	logger *zap.Logger
	svc    *service.ReferenceService
}

func NewReferenceHandler(logger *zap.Logger, svc *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{logger: logger, svc: svc}
}

// All maneja GET /api/reference.
func (h *ReferenceHandler) All(c *gin.Context) {
	data, err := h.svc.All(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "list reference data", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// List maneja GET /api/reference/:kind.
func (h *ReferenceHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Param("kind"))
	if err != nil {
		writeError(c, h.logger, "list reference items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ReferenceHandler) Create(c *gin.Context) {
	var req domain.ReferenceItem
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create reference item", err)
		return
	}
	item, err := h.svc.Create(c.Request.Context(), c.Param("kind"), req)
	if err != nil {
		writeError(c, h.logger, "create reference item", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *ReferenceHandler) Update(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update reference item", err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), c.Param("kind"), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, h.logger, "update reference item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *ReferenceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("kind"), c.Param("id")); err != nil {
		writeError(c, h.logger, "delete reference item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
