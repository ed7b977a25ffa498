package service

import (
	"context"
	"math"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

type SentimentShare struct {
	Label    string  `json:"label"`
	Count    int64   `json:"count"`
	Percent  float64 `json:"percent"`
	AvgScore float64 `json:"avg_score"`
}

type FeedbackSummary struct {
	Total      int64                   `json:"total"`
	AvgScore   float64                 `json:"avg_score"`
	Sentiments []SentimentShare        `json:"sentiments"`
	TopLabels  []repository.LabelCount `json:"top_labels"`
}

// SummaryService computes the dashboard headline metrics.
type SummaryService struct {
	Repo repository.Repository
}

// Summarize always reports the three sentiment buckets, in display order.
func (s *SummaryService) Summarize(ctx context.Context, filter repository.FeedbackFilter) (FeedbackSummary, error) {
	raw, err := s.Repo.SummarizeFeedbacks(ctx, filter)
	if err != nil {
		return FeedbackSummary{}, err
	}
	byLabel := make(map[string]repository.SentimentCount, len(raw.Sentiments))
	for _, sc := range raw.Sentiments {
		byLabel[sc.Label] = sc
	}
	out := FeedbackSummary{
		Total:     raw.Total,
		AvgScore:  round4(raw.AvgScore),
		TopLabels: raw.TopLabels,
	}
	if out.TopLabels == nil {
		out.TopLabels = []repository.LabelCount{}
	}
	for _, label := range []string{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative} {
		sc := byLabel[label]
		share := SentimentShare{Label: label, Count: sc.Count, AvgScore: round4(sc.AvgScore)}
		if raw.Total > 0 {
			share.Percent = round4(float64(sc.Count) * 100 / float64(raw.Total))
		}
		out.Sentiments = append(out.Sentiments, share)
	}
	return out, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
