package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedbackinsights/internal/inference"
	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

func TestSummarizeReportsAllSentiments(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	seedLabels(t, repo, "entrega")

	backend := &stubBackend{
		sentiment: inference.Sentiment{Score: 0.8, Label: "negative"},
		scores:    []inference.LabelScore{{Label: "entrega", Score: 0.9}},
	}
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, backend)}
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "Atrasou"})
		require.NoError(t, err)
	}
	backend.sentiment = inference.Sentiment{Score: 0.6, Label: "positive"}
	_, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "Chegou"})
	require.NoError(t, err)

	sum, err := (&SummaryService{Repo: repo}).Summarize(ctx, repository.FeedbackFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, sum.Total)
	assert.InDelta(t, 0.75, sum.AvgScore, 1e-9)
	require.Len(t, sum.Sentiments, 3)
	assert.Equal(t, SentimentShare{Label: models.SentimentPositive, Count: 1, Percent: 25, AvgScore: 0.6}, sum.Sentiments[0])
	assert.Equal(t, SentimentShare{Label: models.SentimentNeutral}, sum.Sentiments[1])
	assert.Equal(t, SentimentShare{Label: models.SentimentNegative, Count: 3, Percent: 75, AvgScore: 0.8}, sum.Sentiments[2])
	require.Len(t, sum.TopLabels, 1)
	assert.Equal(t, repository.LabelCount{Name: "entrega", Count: 4}, sum.TopLabels[0])
}

func TestSummarizeEmpty(t *testing.T) {
	sum, err := (&SummaryService{Repo: newRepo(t)}).Summarize(context.Background(), repository.FeedbackFilter{})
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.Len(t, sum.Sentiments, 3)
	assert.NotNil(t, sum.TopLabels)
}

func TestDailyStatsRunOnce(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	p := seedPurchase(t, repo)
	svc := &FeedbackService{Repo: repo, Analyzer: newAnalyzer(t, &stubBackend{sentiment: inference.Sentiment{Score: 0.9, Label: "positive"}})}
	_, err := svc.Create(ctx, CreateFeedbackInput{PurchaseID: p.ID, Comment: "Ótimo"})
	require.NoError(t, err)

	flags := &SystemSettingsService{Repo: repo}
	stats := &DailyStatsService{Repo: repo, Flags: flags, LookbackDays: 7}

	_, err = flags.SetEnabled(ctx, FeatureDailyStats, false)
	require.NoError(t, err)
	require.NoError(t, stats.RunOnce(ctx))
	rows, err := stats.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = flags.SetEnabled(ctx, FeatureDailyStats, true)
	require.NoError(t, err)
	require.NoError(t, stats.RunOnce(ctx))
	since := time.Now().UTC().AddDate(0, 0, -1)
	rows, err = stats.List(ctx, &since, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Total)
	assert.Equal(t, 1, rows[0].PositiveCount)
}
