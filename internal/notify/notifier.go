package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"feedbackinsights/internal/config"
	"feedbackinsights/internal/models"
)

const (
	EventFeedbackCreated = "feedback.created"
	serviceName          = "feedback-insights"
)

// Notifier posts a webhook for each new feedback whose sentiment label is in
// the configured set.
type Notifier struct {
	URL        string
	Sentiments map[string]struct{}
	Timeout    time.Duration
	Sender     WebhookSender
	// Enabled is consulted per event when set.
	Enabled func(ctx context.Context) bool
	Logger  *zap.Logger
}

// New returns nil when no webhook url is configured.
func New(cfg config.NotifyConfig, logger *zap.Logger) *Notifier {
	url := strings.TrimSpace(cfg.WebhookURL)
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	set := make(map[string]struct{}, len(cfg.Sentiments))
	for _, s := range cfg.Sentiments {
		s = strings.TrimSpace(s)
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return &Notifier{
		URL:        url,
		Sentiments: set,
		Timeout:    timeout,
		Logger:     logger.Named("notify"),
	}
}

// FeedbackCreated delivers the event when it matches. Delivery errors are
// logged, never returned.
func (n *Notifier) FeedbackCreated(ctx context.Context, fb *models.Feedback) {
	if n == nil || fb == nil {
		return
	}
	if !n.Matches(fb.SentimentLabel) {
		return
	}
	if n.Enabled != nil && !n.Enabled(ctx) {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, n.Timeout)
	defer cancel()

	payload := WebhookPayload{
		Service: serviceName,
		Event:   EventFeedbackCreated,
		Message: Message(fb),
		Data:    fb,
	}
	if err := n.Sender.Send(ctx, n.URL, payload); err != nil {
		n.Logger.Warn("feedback webhook failed",
			zap.Uint64("feedback_id", fb.ID),
			zap.String("sentiment", fb.SentimentLabel),
			zap.Error(err),
		)
		return
	}
	n.Logger.Debug("feedback webhook sent", zap.Uint64("feedback_id", fb.ID))
}

// Matches reports whether a sentiment label triggers a notification. An
// empty set matches everything.
func (n *Notifier) Matches(label string) bool {
	if n == nil {
		return false
	}
	if len(n.Sentiments) == 0 {
		return true
	}
	_, ok := n.Sentiments[label]
	return ok
}

func Message(fb *models.Feedback) string {
	names := make([]string, 0, len(fb.Labels))
	for _, l := range fb.Labels {
		if l.Label.Name != "" {
			names = append(names, l.Label.Name)
		}
	}
	msg := fmt.Sprintf("feedback #%d on purchase #%d: %s (%.2f)", fb.ID, fb.PurchaseID, fb.SentimentLabel, fb.SentimentScore)
	if len(names) > 0 {
		msg += " [" + strings.Join(names, ", ") + "]"
	}
	return msg
}
