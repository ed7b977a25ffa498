package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
	"feedbackinsights/internal/service"
)

type FeedbackHandler struct {
	Repo     repository.Repository
	Feedback *service.FeedbackService
	Summary  *service.SummaryService
	Logger   *zap.Logger
}

type createFeedbackRequest struct {
	PurchaseID uint64 `json:"purchase_id" example:"1"`
	Comment    string `json:"comment" example:"Adorei o produto! Superou minhas expectativas."`
}

func (h *FeedbackHandler) Register(r gin.IRouter) {
	g := r.Group("/feedbacks")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/summary", h.summary)
	g.GET("/:id", h.get)
}

// @Summary Ingest feedback
// @Description Scores sentiment, attaches zero-shot labels from the vocabulary and stores the feedback.
// @Tags feedbacks
// @Accept json
// @Param body body createFeedbackRequest true "feedback"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/feedbacks [post]
func (h *FeedbackHandler) create(c *gin.Context) {
	if h.Feedback == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.Feedback.Create(c.Request.Context(), service.CreateFeedbackInput{
		PurchaseID: req.PurchaseID,
		Comment:    req.Comment,
	})
	if err != nil {
		fail(c, h.Logger, err, "create feedback failed")
		return
	}
	Ok(c, item, nil)
}

// @Summary List feedbacks
// @Tags feedbacks
// @Param skip query int false "offset"
// @Param limit query int false "page size (default 200, max 500)"
// @Param purchase_id query int false "purchase id"
// @Param sentiment query string false "Positivo|Neutro|Negativo, comma separated"
// @Param label query string false "label names, comma separated"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339, inclusive"
// @Success 200 {object} apiResponse
// @Router /api/v1/feedbacks [get]
func (h *FeedbackHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	filter, err := feedbackFilter(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	limit, offset := pageQuery(c)
	params := repository.ListFeedbacksParams{
		FeedbackFilter: filter,
		Limit:          limit,
		Offset:         offset,
		OrderBy:        "id",
		Asc:            boolPtr(true),
	}
	items, err := h.Repo.ListFeedbacks(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, err, "list feedbacks failed")
		return
	}
	total, err := h.Repo.CountFeedbacks(c.Request.Context(), params)
	if err != nil {
		fail(c, h.Logger, err, "count feedbacks failed")
		return
	}
	if items == nil {
		items = []models.Feedback{}
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get feedback
// @Tags feedbacks
// @Param id path int true "feedback id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/feedbacks/{id} [get]
func (h *FeedbackHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetFeedbackByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err, "get feedback failed")
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "feedback not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary Feedback summary
// @Description Totals, sentiment distribution and top labels for the dashboard.
// @Tags feedbacks
// @Param purchase_id query int false "purchase id"
// @Param sentiment query string false "Positivo|Neutro|Negativo, comma separated"
// @Param label query string false "label names, comma separated"
// @Param from query string false "YYYY-MM-DD or RFC3339"
// @Param to query string false "YYYY-MM-DD or RFC3339, inclusive"
// @Success 200 {object} apiResponse
// @Router /api/v1/feedbacks/summary [get]
func (h *FeedbackHandler) summary(c *gin.Context) {
	if h.Summary == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	filter, err := feedbackFilter(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	out, err := h.Summary.Summarize(c.Request.Context(), filter)
	if err != nil {
		fail(c, h.Logger, err, "summarize feedbacks failed")
		return
	}
	Ok(c, out, nil)
}

func feedbackFilter(c *gin.Context) (repository.FeedbackFilter, error) {
	var f repository.FeedbackFilter
	purchaseID, err := uint64QueryPtr(c, "purchase_id")
	if err != nil {
		return f, err
	}
	f.PurchaseID = purchaseID
	for _, raw := range listQuery(c, "sentiment") {
		label, ok := sentimentTerm(raw)
		if !ok {
			return f, fmt.Errorf("invalid sentiment: %s", raw)
		}
		f.Sentiments = append(f.Sentiments, label)
	}
	f.Labels = listQuery(c, "label")
	if f.Since, err = timeQuery(c, "from", false); err != nil {
		return f, err
	}
	if f.Until, err = timeQuery(c, "to", true); err != nil {
		return f, err
	}
	return f, nil
}

// sentimentTerm accepts the stored terms or the model's English labels.
func sentimentTerm(raw string) (string, bool) {
	for _, term := range []string{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative} {
		if strings.EqualFold(raw, term) {
			return term, true
		}
	}
	switch strings.ToLower(raw) {
	case "positive", "pos", "negative", "neg", "neutral":
		return service.NormalizeSentimentLabel(raw), true
	}
	return "", false
}
