package gormrepository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

const topLabelsLimit = 10

func (s *Store) InsertFeedback(ctx context.Context, item *models.Feedback) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (s *Store) GetFeedbackByID(ctx context.Context, id uint64) (*models.Feedback, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Feedback
	err := preloadLabels(s.db.WithContext(ctx).Model(&models.Feedback{})).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListFeedbacks(ctx context.Context, params repository.ListFeedbacksParams) ([]models.Feedback, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyFeedbackFilter(ctx, s.db.WithContext(ctx).Model(&models.Feedback{}), params.FeedbackFilter)
	query = applyOrder(query, params.OrderBy, params.Asc, "feedbacks.id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Feedback
	if err := preloadLabels(query).Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountFeedbacks(ctx context.Context, params repository.ListFeedbacksParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.applyFeedbackFilter(ctx, s.db.WithContext(ctx).Model(&models.Feedback{}), params.FeedbackFilter)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// SummarizeFeedbacks aggregates the filtered feedback set: sentiment
// distribution with per-class averages and the most frequent labels.
func (s *Store) SummarizeFeedbacks(ctx context.Context, filter repository.FeedbackFilter) (repository.FeedbackSummary, error) {
	if s == nil || s.db == nil {
		return repository.FeedbackSummary{}, nil
	}
	var sentiments []repository.SentimentCount
	err := s.applyFeedbackFilter(ctx, s.db.WithContext(ctx).Model(&models.Feedback{}), filter).
		Select("feedbacks.sentiment_label AS label, COUNT(*) AS count, COALESCE(AVG(feedbacks.sentiment_score),0) AS avg_score").
		Group("feedbacks.sentiment_label").
		Order("feedbacks.sentiment_label asc").
		Scan(&sentiments).Error
	if err != nil {
		return repository.FeedbackSummary{}, err
	}

	out := repository.FeedbackSummary{Sentiments: sentiments}
	var weighted float64
	for _, row := range sentiments {
		out.Total += row.Count
		weighted += row.AvgScore * float64(row.Count)
	}
	if out.Total > 0 {
		out.AvgScore = weighted / float64(out.Total)
	}

	var labels []repository.LabelCount
	err = s.applyFeedbackFilter(ctx, s.db.WithContext(ctx).Table("feedback_labels AS fl"), filter).
		Select("l.name AS name, COUNT(*) AS count").
		Joins("JOIN labels AS l ON l.id = fl.label_id").
		Joins("JOIN feedbacks ON feedbacks.id = fl.feedback_id").
		Group("l.name").
		Order("COUNT(*) DESC, l.name ASC").
		Limit(topLabelsLimit).
		Scan(&labels).Error
	if err != nil {
		return repository.FeedbackSummary{}, err
	}
	out.TopLabels = labels
	return out, nil
}

func (s *Store) applyFeedbackFilter(ctx context.Context, query *gorm.DB, f repository.FeedbackFilter) *gorm.DB {
	if f.PurchaseID != nil && *f.PurchaseID > 0 {
		query = query.Where("feedbacks.purchase_id = ?", *f.PurchaseID)
	}
	if sentiments := cleanStrings(f.Sentiments); len(sentiments) > 0 {
		query = query.Where("feedbacks.sentiment_label IN ?", sentiments)
	}
	if names := cleanStrings(f.Labels); len(names) > 0 {
		sub := s.db.WithContext(ctx).
			Table("feedback_labels AS sfl").
			Select("sfl.feedback_id").
			Joins("JOIN labels AS sl ON sl.id = sfl.label_id").
			Where("sl.name IN ?", names)
		query = query.Where("feedbacks.id IN (?)", sub)
	}
	if f.Since != nil && !f.Since.IsZero() {
		query = query.Where("feedbacks.created_at >= ?", f.Since.UTC())
	}
	if f.Until != nil && !f.Until.IsZero() {
		query = query.Where("feedbacks.created_at <= ?", f.Until.UTC())
	}
	return query
}

// preloadLabels eager-loads label links in attachment order.
func preloadLabels(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Labels", func(db *gorm.DB) *gorm.DB {
			return db.Order("feedback_labels.id asc")
		}).
		Preload("Labels.Label")
}
