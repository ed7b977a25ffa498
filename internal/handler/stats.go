package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/service"
)

type StatsHandler struct {
	Stats  *service.DailyStatsService
	Logger *zap.Logger
}

func (h *StatsHandler) Register(r gin.IRouter) {
	r.GET("/stats/daily", h.daily)
}

// @Summary Daily feedback rollup
// @Tags stats
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} apiResponse
// @Router /api/v1/stats/daily [get]
func (h *StatsHandler) daily(c *gin.Context) {
	if h.Stats == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	since, err := timeQuery(c, "from", false)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	until, err := timeQuery(c, "to", false)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	items, err := h.Stats.List(c.Request.Context(), since, until)
	if err != nil {
		fail(c, h.Logger, err, "list daily stats failed")
		return
	}
	if items == nil {
		items = []models.FeedbackDailyStats{}
	}
	Ok(c, items, map[string]any{"count": len(items)})
}
