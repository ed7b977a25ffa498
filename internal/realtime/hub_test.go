package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"feedbackinsights/internal/models"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestHubBroadcastsFeedbackCreated(t *testing.T) {
	h := NewHub(nil)
	c1 := dial(t, h)
	c2 := dial(t, h)
	require.Eventually(t, func() bool { return h.Subscribers() == 2 }, 2*time.Second, 10*time.Millisecond)

	h.FeedbackCreated(context.Background(), &models.Feedback{ID: 42, PurchaseID: 1, SentimentLabel: models.SentimentPositive})

	for _, c := range []*websocket.Conn{c1, c2} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		typ, data, err := c.Read(ctx)
		cancel()
		require.NoError(t, err)
		require.Equal(t, websocket.MessageText, typ)

		var ev struct {
			Type string          `json:"type"`
			Data models.Feedback `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &ev))
		require.Equal(t, EventFeedbackCreated, ev.Type)
		require.EqualValues(t, 42, ev.Data.ID)
		require.Equal(t, models.SentimentPositive, ev.Data.SentimentLabel)
	}
}

func TestHubForgetsClosedClients(t *testing.T) {
	h := NewHub(nil)
	c := dial(t, h)
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return h.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := NewHub(nil)
	h.Publish(Event{Type: "noop"})
	var nilHub *Hub
	nilHub.FeedbackCreated(context.Background(), &models.Feedback{})
}
