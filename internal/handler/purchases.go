package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"feedbackinsights/internal/repository"
	"feedbackinsights/internal/service"
)

type PurchaseHandler struct {
	Repo    repository.Repository
	Catalog *service.CatalogService
	Logger  *zap.Logger
}

type createPurchaseRequest struct {
	CustomerID  string           `json:"customer_id" example:"CUST1001"`
	ProductID   string           `json:"product_id" example:"P100"`
	ProductName string           `json:"product_name" example:"Smartphone X Pro"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number" example:"3000"`
}

func (h *PurchaseHandler) Register(r gin.IRouter) {
	g := r.Group("/purchases")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

// @Summary Create purchase
// @Tags purchases
// @Accept json
// @Param body body createPurchaseRequest true "purchase"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/purchases [post]
func (h *PurchaseHandler) create(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	if req.Amount == nil {
		Error(c, http.StatusBadRequest, "amount is required", nil)
		return
	}
	item, err := h.Catalog.CreatePurchase(c.Request.Context(), service.CreatePurchaseInput{
		CustomerID:  req.CustomerID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Amount:      *req.Amount,
	})
	if err != nil {
		fail(c, h.Logger, err, "create purchase failed")
		return
	}
	Ok(c, item, nil)
}

// @Summary List purchases
// @Tags purchases
// @Param skip query int false "offset"
// @Param limit query int false "page size (default 200, max 500)"
// @Param customer_id query string false "customer id"
// @Param product_id query string false "product id"
// @Success 200 {object} apiResponse
// @Router /api/v1/purchases [get]
func (h *PurchaseHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit, offset := pageQuery(c)
	params := repository.ListPurchasesParams{
		Limit:      limit,
		Offset:     offset,
		CustomerID: strQueryPtr(c, "customer_id"),
		ProductID:  strQueryPtr(c, "product_id"),
		OrderBy:    "id",
		Asc:        boolPtr(true),
	}
	items, err := h.Repo.ListPurchases(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, err, "list purchases failed")
		return
	}
	total, err := h.Repo.CountPurchases(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, err, "count purchases failed")
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get purchase
// @Tags purchases
// @Param id path int true "purchase id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/purchases/{id} [get]
func (h *PurchaseHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetPurchaseByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err, "get purchase failed")
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "purchase not found", nil)
		return
	}
	Ok(c, item, nil)
}
