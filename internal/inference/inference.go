// Package inference wraps the pretrained sentiment and zero-shot models behind
// a fail-open Analyzer. Backends talk to the actual model runtime.
package inference

import (
	"context"
	"errors"
)

// Sentiment is a raw classifier verdict. Label is lower-cased backend output,
// e.g. "positive", "neutral" or "negative".
type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// LabelScore is the independent probability that Label applies to a text.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Backend is a model runtime. Implementations must be safe for concurrent
// use once Load has returned.
type Backend interface {
	Name() string
	// Load fetches or warms the models. It runs once before any call.
	Load(ctx context.Context) error
	Sentiment(ctx context.Context, text string) (Sentiment, error)
	// ZeroShot scores every candidate independently (multi-label).
	ZeroShot(ctx context.Context, text string, candidates []string) ([]LabelScore, error)
	Close() error
}

var (
	ErrAnalyzerClosed = errors.New("inference: analyzer closed")
	ErrEmptyResponse  = errors.New("inference: empty model response")
)

const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)
