package gormrepository

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm/clause"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

func (s *Store) UpsertFeedbackDailyStats(ctx context.Context, item *models.FeedbackDailyStats) error {
	if s == nil || s.db == nil || item == nil || item.Date.IsZero() {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total",
			"positive_count",
			"neutral_count",
			"negative_count",
			"labeled_count",
			"avg_score",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListFeedbackDailyStats(ctx context.Context, params repository.ListDailyStatsParams) ([]models.FeedbackDailyStats, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.FeedbackDailyStats{})
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("date >= ?", truncateDay(*params.Since))
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("date <= ?", truncateDay(*params.Until))
	}
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.FeedbackDailyStats
	if err := query.Order("date asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// RebuildFeedbackDailyStats recomputes the rollup for every UTC day touched by
// [since, until]. The bounds widen to whole days so an upserted row always
// covers its full day. Days are bucketed here rather than in SQL so the same
// code runs on Postgres and SQLite.
func (s *Store) RebuildFeedbackDailyStats(ctx context.Context, since, until *time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Feedback{})
	if since != nil && !since.IsZero() {
		query = query.Where("feedbacks.created_at >= ?", truncateDay(*since))
	}
	if until != nil && !until.IsZero() {
		query = query.Where("feedbacks.created_at < ?", truncateDay(*until).AddDate(0, 0, 1))
	}
	var rows []struct {
		SentimentLabel string
		SentimentScore float64
		CreatedAt      time.Time
		Labeled        int
	}
	err := query.
		Select(`
			feedbacks.sentiment_label AS sentiment_label,
			feedbacks.sentiment_score AS sentiment_score,
			feedbacks.created_at AS created_at,
			CASE WHEN EXISTS (SELECT 1 FROM feedback_labels fl WHERE fl.feedback_id = feedbacks.id) THEN 1 ELSE 0 END AS labeled
		`).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	type bucket struct {
		item     models.FeedbackDailyStats
		scoreSum float64
	}
	byDay := map[time.Time]*bucket{}
	for _, r := range rows {
		day := truncateDay(r.CreatedAt)
		b := byDay[day]
		if b == nil {
			b = &bucket{item: models.FeedbackDailyStats{Date: day}}
			byDay[day] = b
		}
		b.item.Total++
		b.scoreSum += r.SentimentScore
		switch r.SentimentLabel {
		case models.SentimentPositive:
			b.item.PositiveCount++
		case models.SentimentNegative:
			b.item.NegativeCount++
		default:
			b.item.NeutralCount++
		}
		if r.Labeled > 0 {
			b.item.LabeledCount++
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	updated := 0
	now := time.Now().UTC()
	for _, day := range days {
		b := byDay[day]
		item := b.item
		item.AvgScore = b.scoreSum / float64(item.Total)
		item.UpdatedAt = now
		if err := s.UpsertFeedbackDailyStats(ctx, &item); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
