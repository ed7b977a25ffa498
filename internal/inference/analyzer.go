package inference

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultThreshold      = 0.5
	DefaultMaxLabels      = 3
	DefaultMaxConcurrency = 4
)

type Options struct {
	// Labels must score strictly above Threshold to be kept.
	Threshold      float64
	MaxLabels      int
	MaxConcurrency int
	Logger         *zap.Logger
}

// Analyzer is the fail-open facade over a Backend. Model failures are logged
// and replaced with neutral defaults; callers never see them.
type Analyzer struct {
	backend   Backend
	threshold float64
	maxLabels int
	sem       *semaphore.Weighted
	logger    *zap.Logger

	// mu is held shared by in-flight calls and exclusively by Shutdown.
	mu     sync.RWMutex
	closed bool
}

// New loads the backend eagerly. A backend that fails to load is closed and
// the error returned.
func New(ctx context.Context, backend Backend, opts Options) (*Analyzer, error) {
	if backend == nil {
		return nil, fmt.Errorf("inference: backend is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := opts.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	maxLabels := opts.MaxLabels
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}

	if err := backend.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("inference: load %s backend: %w", backend.Name(), err)
	}
	logger.Info("inference backend loaded",
		zap.String("backend", backend.Name()),
		zap.Float64("threshold", threshold),
		zap.Int("max_labels", maxLabels),
		zap.Int("max_concurrency", maxConcurrency),
	)

	return &Analyzer{
		backend:   backend,
		threshold: threshold,
		maxLabels: maxLabels,
		sem:       semaphore.NewWeighted(int64(maxConcurrency)),
		logger:    logger.Named("inference"),
	}, nil
}

// ScoreSentiment classifies text. On any failure it returns score 0 with the
// neutral label.
func (a *Analyzer) ScoreSentiment(ctx context.Context, text string) Sentiment {
	fallback := Sentiment{Score: 0, Label: LabelNeutral}
	release, err := a.acquire(ctx)
	if err != nil {
		a.logger.Warn("sentiment skipped", zap.Error(err))
		return fallback
	}
	defer release()

	out, err := a.backend.Sentiment(ctx, text)
	if err != nil {
		a.logger.Warn("sentiment analysis failed", zap.String("backend", a.backend.Name()), zap.Error(err))
		return fallback
	}
	out.Label = strings.ToLower(strings.TrimSpace(out.Label))
	if out.Label == "" {
		a.logger.Warn("sentiment analysis returned no label", zap.String("backend", a.backend.Name()))
		return fallback
	}
	return out
}

// GenerateLabels picks at most MaxLabels candidates scoring above Threshold,
// best first. An empty candidate set never reaches the backend.
func (a *Analyzer) GenerateLabels(ctx context.Context, text string, candidates []string) []string {
	set := candidateSet(candidates)
	if len(set) == 0 {
		return []string{}
	}
	release, err := a.acquire(ctx)
	if err != nil {
		a.logger.Warn("label generation skipped", zap.Error(err))
		return []string{}
	}
	defer release()

	scores, err := a.backend.ZeroShot(ctx, text, set)
	if err != nil {
		a.logger.Warn("label generation failed",
			zap.String("backend", a.backend.Name()),
			zap.Int("candidates", len(set)),
			zap.Error(err),
		)
		return []string{}
	}
	return selectLabels(scores, set, a.threshold, a.maxLabels)
}

// Shutdown waits for in-flight calls and releases the backend. Only the first
// call does any work; later calls return ErrAnalyzerClosed.
func (a *Analyzer) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrAnalyzerClosed
	}
	a.closed = true
	err := a.backend.Close()
	a.logger.Info("inference backend released", zap.String("backend", a.backend.Name()), zap.Error(err))
	return err
}

func (a *Analyzer) acquire(ctx context.Context) (func(), error) {
	if a == nil {
		return nil, ErrAnalyzerClosed
	}
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return nil, ErrAnalyzerClosed
	}
	if err := a.sem.Acquire(ctx, 1); err != nil {
		a.mu.RUnlock()
		return nil, err
	}
	return func() {
		a.sem.Release(1)
		a.mu.RUnlock()
	}, nil
}

func candidateSet(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, raw := range candidates {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

func selectLabels(scores []LabelScore, candidates []string, threshold float64, maxLabels int) []string {
	allowed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[c] = struct{}{}
	}
	kept := make([]LabelScore, 0, len(scores))
	seen := map[string]struct{}{}
	for _, s := range scores {
		name := strings.TrimSpace(s.Label)
		if _, ok := allowed[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if s.Score <= threshold {
			continue
		}
		seen[name] = struct{}{}
		kept = append(kept, LabelScore{Label: name, Score: s.Score})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > maxLabels {
		kept = kept[:maxLabels]
	}
	out := make([]string, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.Label)
	}
	return out
}
