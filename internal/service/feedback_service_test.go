package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedbackinsights/internal/inference"
	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

type stubBackend struct {
	sentiment     inference.Sentiment
	scores        []inference.LabelScore
	fail          bool
	sentCalls     atomic.Int32
	zeroShotCalls atomic.Int32
}

func (b *stubBackend) Name() string               { return "stub" }
func (b *stubBackend) Load(context.Context) error { return nil }
func (b *stubBackend) Close() error               { return nil }
func (b *stubBackend) Sentiment(ctx context.Context, text string) (inference.Sentiment, error) {
	b.sentCalls.Add(1)
	if b.fail {
		return inference.Sentiment{}, errors.New("model crashed")
	}
	return b.sentiment, nil
}
func (b *stubBackend) ZeroShot(ctx context.Context, text string, candidates []string) ([]inference.LabelScore, error) {
	b.zeroShotCalls.Add(1)
	if b.fail {
		return nil, errors.New("model crashed")
	}
	return b.scores, nil
}

func newAnalyzer(t *testing.T, b inference.Backend) *inference.Analyzer {
	t.Helper()
	a, err := inference.New(context.Background(), b, inference.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func TestCreateFeedbackPositiveScenario(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	seedLabels(t, repo, "qualidade", "desempenho", "entrega")

	backend := &stubBackend{
		sentiment: inference.Sentiment{Score: 0.95, Label: "positive"},
		scores: []inference.LabelScore{
			{Label: "qualidade", Score: 0.8},
			{Label: "desempenho", Score: 0.6},
			{Label: "entrega", Score: 0.1},
		},
	}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend)}

	fb, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "Adorei o produto! Superou minhas expectativas."})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, fb.SentimentLabel)
	assert.Equal(t, 0.95, fb.SentimentScore)
	require.Len(t, fb.Labels, 2)
	assert.Equal(t, "qualidade", fb.Labels[0].Label.Name)
	assert.Equal(t, "desempenho", fb.Labels[1].Label.Name)

	// no new vocabulary entries were needed
	total, err := repo.CountLabels(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestCreateFeedbackAdapterFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	seedLabels(t, repo, "qualidade")

	backend := &stubBackend{fail: true}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend)}

	fb, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, fb.SentimentLabel)
	assert.Equal(t, 0.0, fb.SentimentScore)
	assert.Empty(t, fb.Labels)
	assert.EqualValues(t, 1, backend.sentCalls.Load())
	assert.EqualValues(t, 1, backend.zeroShotCalls.Load())

	stored, err := repo.GetFeedbackByID(ctx, fb.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateFeedbackMissingPurchase(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	backend := &stubBackend{sentiment: inference.Sentiment{Score: 0.9, Label: "positive"}}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend)}

	_, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: 999, Comment: "cadê?"})
	require.ErrorIs(t, err, ErrPurchaseNotFound)
	assert.EqualValues(t, 0, backend.sentCalls.Load())

	total, err := repo.CountFeedbacks(ctx, repository.ListFeedbacksParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateFeedbackValidatesInput(t *testing.T) {
	svc := &FeedbackService{Repo: newRepo(t)}
	_, err := svc.Create(context.Background(), CreateFeedbackInput{PurchaseID: 1, Comment: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(context.Background(), CreateFeedbackInput{Comment: "x"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateFeedbackEmptyVocabularySkipsLabeling(t *testing.T) {
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	backend := &stubBackend{
		sentiment: inference.Sentiment{Score: 0.7, Label: "negative"},
		scores:    []inference.LabelScore{{Label: "entrega", Score: 0.99}},
	}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend)}

	fb, err := svc.Create(context.Background(), CreateFeedbackInput{PurchaseID: p.ID, Comment: "Chegou atrasado"})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, fb.SentimentLabel)
	assert.Empty(t, fb.Labels)
	assert.EqualValues(t, 0, backend.zeroShotCalls.Load())
}

func TestCreateFeedbackTwiceCreatesTwoRows(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, &stubBackend{sentiment: inference.Sentiment{Score: 0.5, Label: "neutral"}})}

	in := CreateFeedbackInput{PurchaseID: p.ID, Comment: "Produto conforme descrito"}
	a, err := svc.Create(ctx, in)
	require.NoError(t, err)
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	total, err := repo.CountFeedbacks(ctx, repository.ListFeedbacksParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

// fixedAnalyzer proposes labels outside the stored vocabulary, as a model
// racing another ingestion would see them.
type fixedAnalyzer struct {
	labels []string

	mu   sync.Mutex
	seen [][]string
}

func (a *fixedAnalyzer) ScoreSentiment(context.Context, string) inference.Sentiment {
	return inference.Sentiment{Score: 0.88, Label: "NEG"}
}

func (a *fixedAnalyzer) GenerateLabels(ctx context.Context, text string, candidates []string) []string {
	a.mu.Lock()
	a.seen = append(a.seen, candidates)
	a.mu.Unlock()
	return a.labels
}

type recordingVocabulary struct {
	names       []string
	invalidated int
}

func (v *recordingVocabulary) Names(context.Context) ([]string, error) { return v.names, nil }
func (v *recordingVocabulary) Invalidate(context.Context)              { v.invalidated++ }

func TestCreateFeedbackCreatesMissingLabels(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	seedLabels(t, repo, "entrega")

	comment := strings.Repeat("á", 60) + " e a embalagem veio amassada"
	analyzer := &fixedAnalyzer{labels: []string{"entrega", "embalagem"}}
	vocab := &recordingVocabulary{names: []string{"entrega"}}
	svc := &FeedbackService{Repo: repo, Analyzer: analyzer, Vocabulary: vocab}

	fb, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: comment})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, fb.SentimentLabel)
	require.Len(t, fb.Labels, 2)
	assert.Equal(t, "entrega", fb.Labels[0].Label.Name)
	assert.Equal(t, "embalagem", fb.Labels[1].Label.Name)
	assert.Equal(t, [][]string{{"entrega"}}, analyzer.seen)
	assert.Equal(t, 1, vocab.invalidated)

	created, err := repo.GetLabelByName(ctx, "embalagem")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Automatically generated for: "+strings.Repeat("á", 50)+"...", created.Description)

	existing, err := repo.GetLabelByName(ctx, "entrega")
	require.NoError(t, err)
	assert.Empty(t, existing.Description)
}

func TestCreateFeedbackConcurrentNewLabel(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	svc := &FeedbackService{Repo: repo, Analyzer: &fixedAnalyzer{labels: []string{"bateria"}}}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "bateria fraca"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	total, err := repo.CountLabels(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCreateFeedbackHonoursSwitches(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	seedLabels(t, repo, "qualidade")
	flags := &SystemSettingsService{Repo: repo}
	_, err := flags.SetEnabled(ctx, "sentiment", false)
	require.NoError(t, err)
	_, err = flags.SetEnabled(ctx, FeatureLabeling, false)
	require.NoError(t, err)

	backend := &stubBackend{
		sentiment: inference.Sentiment{Score: 0.99, Label: "positive"},
		scores:    []inference.LabelScore{{Label: "qualidade", Score: 0.9}},
	}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend), Flags: flags}
	fb, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "Excelente"})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, fb.SentimentLabel)
	assert.Equal(t, 0.0, fb.SentimentScore)
	assert.Empty(t, fb.Labels)
	assert.EqualValues(t, 0, backend.sentCalls.Load())
	assert.EqualValues(t, 0, backend.zeroShotCalls.Load())
}

type capturePublisher struct {
	mu  sync.Mutex
	ids []uint64
}

func (c *capturePublisher) FeedbackCreated(ctx context.Context, fb *models.Feedback) {
	c.mu.Lock()
	c.ids = append(c.ids, fb.ID)
	c.mu.Unlock()
}

func TestCreateFeedbackPublishes(t *testing.T) {
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	pub := &capturePublisher{}
	svc := &FeedbackService{
		Repo:       repo,
		Analyzer:   newAnalyzer(t, &stubBackend{sentiment: inference.Sentiment{Score: 0.6, Label: "positive"}}),
		Publishers: []FeedbackPublisher{pub, nil},
	}
	fb, err := svc.Create(context.Background(), CreateFeedbackInput{PurchaseID: p.ID, Comment: "Bom"})
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, []uint64{fb.ID}, pub.ids)
}

func TestNormalizeSentimentLabel(t *testing.T) {
	tests := map[string]string{
		"positive": models.SentimentPositive,
		"POS":      models.SentimentPositive,
		" Pos ":    models.SentimentPositive,
		"negative": models.SentimentNegative,
		"Neg":      models.SentimentNegative,
		"neutral":  models.SentimentNeutral,
		"mixed":    models.SentimentNeutral,
		"":         models.SentimentNeutral,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSentimentLabel(in), in)
	}
}

func TestAutoLabelDescription(t *testing.T) {
	assert.Equal(t, "Automatically generated for: curto...", AutoLabelDescription("curto", 50))
	assert.Equal(t, "Automatically generated for: ação...", AutoLabelDescription("ação rápida", 4))
	assert.Equal(t, "Automatically generated for: "+strings.Repeat("x", 50)+"...", AutoLabelDescription(strings.Repeat("x", 80), 0))
}
