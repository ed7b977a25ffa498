package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHFTestBackend(t *testing.T, handler http.HandlerFunc) *HFBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b, err := NewHF(HFOptions{
		BaseURL:        srv.URL,
		APIKey:         "hf_test",
		SentimentModel: "acme/sentiment",
		ZeroShotModel:  "acme/nli",
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		RetryWait:      time.Millisecond,
	})
	require.NoError(t, err)
	return b
}

func TestHFSentimentNestedResponse(t *testing.T) {
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/acme/sentiment", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		var req hfTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Adorei", req.Inputs)
		_, _ = w.Write([]byte(`[[{"label":"negative","score":0.03},{"label":"positive","score":0.95},{"label":"neutral","score":0.02}]]`))
	})
	got, err := b.Sentiment(context.Background(), "Adorei")
	require.NoError(t, err)
	assert.Equal(t, Sentiment{Score: 0.95, Label: "positive"}, got)
}

func TestHFSentimentFlatResponse(t *testing.T) {
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"Negative","score":0.8}]`))
	})
	got, err := b.Sentiment(context.Background(), "Ruim")
	require.NoError(t, err)
	assert.Equal(t, "negative", got.Label)
}

func TestHFZeroShotMultiLabel(t *testing.T) {
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/acme/nli", r.URL.Path)
		var req hfZeroShotRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Parameters.MultiLabel)
		assert.Equal(t, []string{"entrega", "qualidade"}, req.Parameters.CandidateLabels)
		_, _ = w.Write([]byte(`{"sequence":"x","labels":["qualidade","entrega"],"scores":[0.91,0.12]}`))
	})
	got, err := b.ZeroShot(context.Background(), "x", []string{"entrega", "qualidade"})
	require.NoError(t, err)
	assert.Equal(t, []LabelScore{{Label: "qualidade", Score: 0.91}, {Label: "entrega", Score: 0.12}}, got)
}

func TestHFRetriesColdModel(t *testing.T) {
	var calls atomic.Int32
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model acme/sentiment is currently loading","estimated_time":1}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":0.6}]]`))
	})
	got, err := b.Sentiment(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, "neutral", got.Label)
	assert.EqualValues(t, 2, calls.Load())
}

func TestHFDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	})
	_, err := b.Sentiment(context.Background(), "ok")
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
	assert.Equal(t, "Invalid credentials", herr.Message)
	assert.EqualValues(t, 1, calls.Load())
}

func TestHFLoadWarmsBothModels(t *testing.T) {
	seen := map[string]bool{}
	b := newHFTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.URL.Path] = true
		if r.URL.Path == "/models/acme/nli" {
			_, _ = w.Write([]byte(`{"labels":["ok"],"scores":[0.99]}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"neutral","score":0.6}]]`))
	})
	require.NoError(t, b.Load(context.Background()))
	assert.True(t, seen["/models/acme/sentiment"])
	assert.True(t, seen["/models/acme/nli"])
	require.NoError(t, b.Close())
}

func TestDecodeZeroShotRejectsMismatch(t *testing.T) {
	_, err := decodeZeroShot(json.RawMessage(`{"labels":["a","b"],"scores":[0.1]}`))
	require.Error(t, err)
	_, err = decodeZeroShot(json.RawMessage(`[]`))
	require.ErrorIs(t, err, ErrEmptyResponse)
}
