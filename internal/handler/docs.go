package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Feedback Insights API

Ingests purchases and customer feedback, scores sentiment, attaches
zero-shot labels and serves the results to the dashboard.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- POST /api/v1/purchases
- GET /api/v1/purchases?skip=&limit=
- GET /api/v1/purchases/{id}
- POST /api/v1/labels
- GET /api/v1/labels?skip=&limit=
- POST /api/v1/feedbacks
- GET /api/v1/feedbacks?skip=&limit=&sentiment=&label=&from=&to=&purchase_id=
- GET /api/v1/feedbacks/{id}
- GET /api/v1/feedbacks/summary
- GET /api/v1/stats/daily?from=&to=
- GET /api/v1/settings/switches
- PUT /api/v1/settings/switches/{name}
- GET /ws/feedbacks (websocket, "feedback.created" events)

Responses use {code, message, data, meta}; list meta carries
{limit, offset, total, has_next}. limit defaults to 200 (max 500).
`)
	})
}
