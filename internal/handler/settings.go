package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feedbackinsights/internal/service"
)

type SettingsHandler struct {
	Settings *service.SystemSettingsService
	Logger   *zap.Logger
}

type putSwitchRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *SettingsHandler) Register(r gin.IRouter) {
	g := r.Group("/settings")
	g.GET("/switches", h.listSwitches)
	g.PUT("/switches/:name", h.putSwitch)
}

// @Summary List feature switches
// @Tags settings
// @Success 200 {object} apiResponse
// @Router /api/v1/settings/switches [get]
func (h *SettingsHandler) listSwitches(c *gin.Context) {
	items, err := h.Settings.ListSwitches(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "list switches failed")
		return
	}
	Ok(c, items, nil)
}

// @Summary Set feature switch
// @Tags settings
// @Accept json
// @Param name path string true "switch name, e.g. feature.labeling or labeling"
// @Param body body putSwitchRequest true "switch value"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/v1/settings/switches/{name} [put]
func (h *SettingsHandler) putSwitch(c *gin.Context) {
	if h.Settings == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var req putSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		Error(c, http.StatusBadRequest, "body must be {\"enabled\": true|false}", nil)
		return
	}
	sw, err := h.Settings.SetEnabled(c.Request.Context(), c.Param("name"), *req.Enabled)
	if err != nil {
		fail(c, h.Logger, err, "set switch failed")
		return
	}
	if h.Logger != nil {
		h.Logger.Info("feature switch updated", zap.String("key", sw.Key), zap.Bool("enabled", sw.Enabled))
	}
	Ok(c, sw, nil)
}
