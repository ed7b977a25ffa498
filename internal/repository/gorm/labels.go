package gormrepository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

// InsertLabel creates a label from an explicit request. A name that already
// exists yields repository.ErrDuplicate.
func (s *Store) InsertLabel(ctx context.Context, item *models.Label) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Name = strings.TrimSpace(item.Name)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("label %q: %w", item.Name, repository.ErrDuplicate)
	}
	return nil
}

// CreateLabelIfNotExists inserts the label unless the name is taken, in which
// case the stored row is returned. A concurrent insert of the same name
// resolves to the winner's row.
func (s *Store) CreateLabelIfNotExists(ctx context.Context, item *models.Label) (*models.Label, bool, error) {
	if s == nil || s.db == nil || item == nil {
		return nil, false, nil
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, false, fmt.Errorf("label name is empty")
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 && item.ID != 0 {
		return item, true, nil
	}
	existing, err := s.GetLabelByName(ctx, item.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("label %q not found after conflict", item.Name)
	}
	return existing, false, nil
}

func (s *Store) GetLabelByName(ctx context.Context, name string) (*models.Label, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.Label
	err := s.db.WithContext(ctx).Model(&models.Label{}).Where("name = ?", name).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListLabels(ctx context.Context, params repository.ListLabelsParams) ([]models.Label, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOrder(s.db.WithContext(ctx).Model(&models.Label{}), params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Label
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountLabels(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Label{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListLabelNames returns the whole vocabulary in insertion order.
func (s *Store) ListLabelNames(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var names []string
	if err := s.db.WithContext(ctx).Model(&models.Label{}).Order("id asc").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) InsertFeedbackLabel(ctx context.Context, item *models.FeedbackLabel) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.FeedbackID == 0 || item.LabelID == 0 {
		return fmt.Errorf("feedback label requires feedback_id and label_id")
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feedback_id"}, {Name: "label_id"}},
		DoNothing: true,
	}).Create(item).Error
}
