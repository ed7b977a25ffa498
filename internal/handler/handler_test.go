package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"feedbackinsights/internal/db/dbtest"
	"feedbackinsights/internal/inference"
	"feedbackinsights/internal/realtime"
	gormrepository "feedbackinsights/internal/repository/gorm"
	"feedbackinsights/internal/service"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type testServer struct {
	engine *gin.Engine
	hub    *realtime.Hub
	fb     *service.FeedbackService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn := dbtest.Open(t)
	repo := gormrepository.New(conn.Gorm)

	analyzer, err := inference.New(context.Background(), inference.NewRules(nil), inference.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = analyzer.Shutdown() })

	settings := &service.SystemSettingsService{Repo: repo}
	require.NoError(t, settings.EnsureDefaultSwitches(context.Background()))
	hub := realtime.NewHub(nil)
	fb := &service.FeedbackService{
		Repo:       repo,
		Analyzer:   analyzer,
		Flags:      settings,
		Publishers: []service.FeedbackPublisher{hub},
	}
	t.Cleanup(fb.Wait)

	engine := NewRouter(Deps{
		Repo:     repo,
		DB:       conn.SQL,
		Catalog:  &service.CatalogService{Repo: repo},
		Feedback: fb,
		Summary:  &service.SummaryService{Repo: repo},
		Stats:    &service.DailyStatsService{Repo: repo, Flags: settings},
		Settings: settings,
		LiveFeed: hub,
	})
	return &testServer{engine: engine, hub: hub, fb: fb}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) createPurchase(t *testing.T) uint64 {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"customer_id":  "CUST1001",
		"product_id":   "P100",
		"product_name": "Smartphone X Pro",
		"amount":       3000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p struct {
		ID           uint64  `json:"id"`
		Amount       float64 `json:"amount"`
		PurchaseDate string  `json:"purchase_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.NotZero(t, p.ID)
	require.Equal(t, 3000.0, p.Amount)
	require.NotEmpty(t, p.PurchaseDate)
	return p.ID
}

type feedbackView struct {
	ID             uint64  `json:"id"`
	PurchaseID     uint64  `json:"purchase_id"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
	Labels         []struct {
		Label struct {
			Name string `json:"name"`
		} `json:"label"`
	} `json:"labels"`
}

func TestPurchaseEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.createPurchase(t)
	s.createPurchase(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/purchases?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env.Meta["limit"])
	assert.EqualValues(t, 1, env.Meta["offset"])
	assert.EqualValues(t, 2, env.Meta["total"])
	assert.Equal(t, false, env.Meta["has_next"])

	rec, env = s.do(t, http.MethodGet, "/api/v1/purchases", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 200, env.Meta["limit"])

	rec, _ = s.do(t, http.MethodGet, "/api/v1/purchases/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/purchases/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/purchases/"+itoa(id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePurchaseValidation(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"customer_id": "C", "product_id": "P", "product_name": "X",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount is required", env.Message)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"customer_id": "C", "product_id": "P", "product_name": "X", "amount": -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/purchases", map[string]any{
		"product_id": "P", "product_name": "X", "amount": 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLabelEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/v1/labels", map[string]any{"name": "qualidade", "description": "Qualidade"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/v1/labels", map[string]any{"name": "qualidade"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/v1/labels", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/v1/labels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var labels []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &labels))
	require.Len(t, labels, 1)
	assert.Equal(t, "qualidade", labels[0].Name)
}

func TestFeedbackIngestionFlow(t *testing.T) {
	s := newTestServer(t)
	pid := s.createPurchase(t)
	for _, name := range []string{"qualidade", "entrega", "preço"} {
		rec, _ := s.do(t, http.MethodPost, "/api/v1/labels", map[string]any{"name": name})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := s.do(t, http.MethodPost, "/api/v1/feedbacks", map[string]any{
		"purchase_id": pid,
		"comment":     "Adorei o produto! Excelente qualidade.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fb feedbackView
	require.NoError(t, json.Unmarshal(env.Data, &fb))
	assert.Equal(t, "Positivo", fb.SentimentLabel)
	require.Len(t, fb.Labels, 1)
	assert.Equal(t, "qualidade", fb.Labels[0].Label.Name)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/feedbacks", map[string]any{
		"purchase_id": pid,
		"comment":     "Péssimo, a entrega atrasou",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/feedbacks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []feedbackView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "qualidade", list[0].Labels[0].Label.Name)
	assert.Equal(t, "Negativo", list[1].SentimentLabel)

	rec, env = s.do(t, http.MethodGet, "/api/v1/feedbacks?sentiment=negative&label=entrega", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Negativo", list[0].SentimentLabel)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/feedbacks?sentiment=happy", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/feedbacks?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/feedbacks/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum service.FeedbackSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.EqualValues(t, 2, sum.Total)
	require.Len(t, sum.Sentiments, 3)
	assert.EqualValues(t, 50, sum.Sentiments[0].Percent)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/feedbacks/"+itoa(fb.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/feedbacks/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFeedbackUnknownPurchase(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodPost, "/api/v1/feedbacks", map[string]any{"purchase_id": 77, "comment": "oi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "purchase not found", env.Message)

	rec, env = s.do(t, http.MethodGet, "/api/v1/feedbacks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, env.Meta["total"])
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPut, "/api/v1/settings/switches/labeling", map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/v1/settings/switches/teleport", map[string]any{"enabled": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = s.do(t, http.MethodPut, "/api/v1/settings/switches/labeling", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/v1/settings/switches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var switches []service.Switch
	require.NoError(t, json.Unmarshal(env.Data, &switches))
	for _, sw := range switches {
		assert.Equal(t, sw.Key != service.FeatureLabeling, sw.Enabled, sw.Key)
	}
}

func TestDailyStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodGet, "/api/v1/stats/daily?from=2024-01-01&to=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(env.Data))
	rec, _ = s.do(t, http.MethodGet, "/api/v1/stats/daily?from=01/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMiddleware(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	out := httptest.NewRecorder()
	s.engine.ServeHTTP(out, req)
	assert.Equal(t, "abc-123", out.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/feedbacks", nil)
	out = httptest.NewRecorder()
	s.engine.ServeHTTP(out, req)
	assert.Equal(t, http.StatusNoContent, out.Code)
	assert.Equal(t, "*", out.Header().Get("Access-Control-Allow-Origin"))
}

func TestLiveFeedReceivesIngestedFeedback(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/feedbacks", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	pid := s.createPurchase(t)
	rec, _ := s.do(t, http.MethodPost, "/api/v1/feedbacks", map[string]any{"purchase_id": pid, "comment": "Chegou rápido"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var ev struct {
		Type string       `json:"type"`
		Data feedbackView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, realtime.EventFeedbackCreated, ev.Type)
	assert.Equal(t, pid, ev.Data.PurchaseID)
}

func itoa(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
