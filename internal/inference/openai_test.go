package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func newOpenAITestBackend(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b, err := NewOpenAI(OpenAIOptions{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "test-model", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return b
}

func TestOpenAISentiment(t *testing.T) {
	b := newOpenAITestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		chatReply(w, `{"label":"Positive","score":0.93}`)
	})
	got, err := b.Sentiment(context.Background(), "Adorei")
	require.NoError(t, err)
	assert.Equal(t, Sentiment{Score: 0.93, Label: "positive"}, got)
}

func TestOpenAISentimentRejectsUnknownLabel(t *testing.T) {
	b := newOpenAITestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, `{"label":"mixed","score":0.5}`)
	})
	_, err := b.Sentiment(context.Background(), "hmm")
	require.Error(t, err)
}

func TestOpenAIZeroShotKeepsCandidateOrder(t *testing.T) {
	b := newOpenAITestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, `{"scores":{"qualidade":0.8,"entrega":0.2,"extra":0.9}}`)
	})
	got, err := b.ZeroShot(context.Background(), "x", []string{"entrega", "qualidade"})
	require.NoError(t, err)
	assert.Equal(t, []LabelScore{{Label: "entrega", Score: 0.2}, {Label: "qualidade", Score: 0.8}}, got)
}

func TestOpenAILoadLooksUpModel(t *testing.T) {
	b := newOpenAITestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model"))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "test-model", "object": "model", "owned_by": "me"})
	})
	require.NoError(t, b.Load(context.Background()))
}
