package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feedbackinsights/internal/repository"
	"feedbackinsights/internal/service"
)

// VocabularyInvalidator is told when a label is added outside ingestion.
type VocabularyInvalidator interface {
	Invalidate(ctx context.Context)
}

type LabelHandler struct {
	Repo       repository.Repository
	Catalog    *service.CatalogService
	Vocabulary VocabularyInvalidator
	Logger     *zap.Logger
}

type createLabelRequest struct {
	Name        string `json:"name" example:"qualidade"`
	Description string `json:"description" example:"Qualidade do produto"`
}

func (h *LabelHandler) Register(r gin.IRouter) {
	g := r.Group("/labels")
	g.POST("", h.create)
	g.GET("", h.list)
}

// @Summary Create label
// @Tags labels
// @Accept json
// @Param body body createLabelRequest true "label"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/v1/labels [post]
func (h *LabelHandler) create(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.Catalog.CreateLabel(c.Request.Context(), service.CreateLabelInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, h.Logger, err, "create label failed")
		return
	}
	if h.Vocabulary != nil {
		h.Vocabulary.Invalidate(c.Request.Context())
	}
	Ok(c, item, nil)
}

// @Summary List labels
// @Tags labels
// @Param skip query int false "offset"
// @Param limit query int false "page size (default 200, max 500)"
// @Success 200 {object} apiResponse
// @Router /api/v1/labels [get]
func (h *LabelHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit, offset := pageQuery(c)
	items, err := h.Repo.ListLabels(c.Request.Context(), repository.ListLabelsParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "id",
		Asc:     boolPtr(true),
	})
	if err != nil {
		fail(c, h.Logger, err, "list labels failed")
		return
	}
	total, err := h.Repo.CountLabels(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "count labels failed")
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
