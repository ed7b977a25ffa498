package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"feedbackinsights/internal/models"
)

const EventFeedbackCreated = "feedback.created"

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

type subscriber struct {
	msgs chan []byte
	// closeSlow kicks a client that cannot keep up.
	closeSlow func()
}

// Hub fans feedback events out to websocket clients. Slow clients are
// disconnected rather than blocking publishers.
type Hub struct {
	Logger       *zap.Logger
	Buffer       int
	WriteTimeout time.Duration

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Logger:       logger.Named("realtime"),
		Buffer:       16,
		WriteTimeout: 5 * time.Second,
		subs:         map[*subscriber]struct{}{},
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) FeedbackCreated(_ context.Context, fb *models.Feedback) {
	if h == nil || fb == nil {
		return
	}
	h.Publish(Event{Type: EventFeedbackCreated, At: time.Now().UTC(), Data: fb})
}

func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.Logger.Warn("realtime marshal failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.msgs <- msg:
		default:
			go s.closeSlow()
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.Logger.Warn("realtime accept failed", zap.Error(err))
		return
	}
	err = h.serve(r.Context(), conn)
	if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		h.Logger.Debug("realtime client dropped", zap.Error(err))
	}
}

func (h *Hub) serve(ctx context.Context, conn *websocket.Conn) error {
	s := &subscriber{
		msgs: make(chan []byte, h.buffer()),
		closeSlow: func() {
			_ = conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		},
	}
	h.add(s)
	defer h.remove(s)

	// clients only listen; CloseRead handles control frames
	ctx = conn.CloseRead(ctx)
	for {
		select {
		case msg := <-s.msgs:
			if err := h.write(ctx, conn, msg); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	timeout := h.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func (h *Hub) buffer() int {
	if h.Buffer <= 0 {
		return 16
	}
	return h.Buffer
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	if h.subs == nil {
		h.subs = map[*subscriber]struct{}{}
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}
