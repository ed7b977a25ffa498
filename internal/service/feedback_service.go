package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"feedbackinsights/internal/inference"
	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

const (
	defaultDescriptionPrefixRunes = 50
	autoLabelDescriptionPrefix    = "Automatically generated for: "
	publishTimeout                = 10 * time.Second
)

// Analyzer is the fail-open model facade used by the pipeline.
type Analyzer interface {
	ScoreSentiment(ctx context.Context, text string) inference.Sentiment
	GenerateLabels(ctx context.Context, text string, candidates []string) []string
}

// Vocabulary supplies the candidate label names for zero-shot labeling.
type Vocabulary interface {
	Names(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context)
}

// FeedbackPublisher receives each ingested feedback after the call returns.
type FeedbackPublisher interface {
	FeedbackCreated(ctx context.Context, fb *models.Feedback)
}

type CreateFeedbackInput struct {
	PurchaseID uint64
	Comment    string
}

type FeedbackService struct {
	Repo       repository.Repository
	Analyzer   Analyzer
	Vocabulary Vocabulary
	Flags      *SystemSettingsService
	Publishers []FeedbackPublisher
	Logger     *zap.Logger

	DescriptionPrefixRunes int

	wg sync.WaitGroup
}

// Create runs the ingestion pipeline. Only a missing purchase or a storage
// failure is returned as an error; model failures degrade to neutral
// sentiment and no labels. Writes are committed one by one.
func (s *FeedbackService) Create(ctx context.Context, in CreateFeedbackInput) (*models.Feedback, error) {
	if in.PurchaseID == 0 {
		return nil, invalidf("purchase_id is required")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, invalidf("comment is required")
	}
	logger := s.logger()

	purchase, err := s.Repo.GetPurchaseByID(ctx, in.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase %d: %w", in.PurchaseID, err)
	}
	if purchase == nil {
		return nil, fmt.Errorf("%w: %d", ErrPurchaseNotFound, in.PurchaseID)
	}

	sentiment := inference.Sentiment{Score: 0, Label: inference.LabelNeutral}
	if s.Analyzer != nil && s.Flags.IsEnabled(ctx, FeatureSentiment, true) {
		sentiment = s.Analyzer.ScoreSentiment(ctx, in.Comment)
	}

	fb := &models.Feedback{
		PurchaseID:     purchase.ID,
		Comment:        in.Comment,
		SentimentScore: sentiment.Score,
		SentimentLabel: NormalizeSentimentLabel(sentiment.Label),
	}
	if err := s.Repo.InsertFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("insert feedback: %w", err)
	}

	if s.Analyzer != nil && s.Flags.IsEnabled(ctx, FeatureLabeling, true) {
		if err := s.attachLabels(ctx, fb); err != nil {
			return nil, err
		}
	}

	out, err := s.Repo.GetFeedbackByID(ctx, fb.ID)
	if err != nil {
		return nil, fmt.Errorf("reload feedback %d: %w", fb.ID, err)
	}
	if out == nil {
		out = fb
	}
	logger.Info("feedback ingested",
		zap.Uint64("feedback_id", out.ID),
		zap.Uint64("purchase_id", out.PurchaseID),
		zap.String("sentiment", out.SentimentLabel),
		zap.Float64("score", out.SentimentScore),
		zap.Int("labels", len(out.Labels)),
	)
	s.publish(out)
	return out, nil
}

func (s *FeedbackService) attachLabels(ctx context.Context, fb *models.Feedback) error {
	vocabulary, err := s.vocabulary(ctx)
	if err != nil {
		return fmt.Errorf("load label vocabulary: %w", err)
	}
	names := s.Analyzer.GenerateLabels(ctx, fb.Comment, vocabulary)
	created := false
	for _, name := range names {
		label, isNew, err := s.Repo.CreateLabelIfNotExists(ctx, &models.Label{
			Name:        name,
			Description: AutoLabelDescription(fb.Comment, s.DescriptionPrefixRunes),
		})
		if err != nil {
			return fmt.Errorf("ensure label %q: %w", name, err)
		}
		created = created || isNew
		if err := s.Repo.InsertFeedbackLabel(ctx, &models.FeedbackLabel{FeedbackID: fb.ID, LabelID: label.ID}); err != nil {
			return fmt.Errorf("link label %q: %w", name, err)
		}
	}
	if created && s.Vocabulary != nil {
		s.Vocabulary.Invalidate(ctx)
	}
	return nil
}

func (s *FeedbackService) vocabulary(ctx context.Context) ([]string, error) {
	if s.Vocabulary != nil {
		return s.Vocabulary.Names(ctx)
	}
	return s.Repo.ListLabelNames(ctx)
}

func (s *FeedbackService) publish(fb *models.Feedback) {
	if len(s.Publishers) == 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		for _, p := range s.Publishers {
			if p != nil {
				p.FeedbackCreated(ctx, fb)
			}
		}
	}()
}

// Wait blocks until every pending publish has finished.
func (s *FeedbackService) Wait() {
	s.wg.Wait()
}

func (s *FeedbackService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// NormalizeSentimentLabel maps a model label onto the stored vocabulary.
// Anything unrecognised is neutral.
func NormalizeSentimentLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos":
		return models.SentimentPositive
	case "negative", "neg":
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// AutoLabelDescription describes a label created during ingestion from the
// first n runes of the comment.
func AutoLabelDescription(comment string, n int) string {
	if n <= 0 {
		n = defaultDescriptionPrefixRunes
	}
	prefix := comment
	if utf8.RuneCountInString(comment) > n {
		prefix = string([]rune(comment)[:n])
	}
	return autoLabelDescriptionPrefix + prefix + "..."
}
