package gormrepository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

func (s *Store) InsertPurchase(ctx context.Context, item *models.Purchase) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetPurchaseByID(ctx context.Context, id uint64) (*models.Purchase, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Purchase
	err := s.db.WithContext(ctx).Model(&models.Purchase{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPurchases(ctx context.Context, params repository.ListPurchasesParams) ([]models.Purchase, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyPurchaseFilter(s.db.WithContext(ctx).Model(&models.Purchase{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Purchase
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPurchases(ctx context.Context, params repository.ListPurchasesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyPurchaseFilter(s.db.WithContext(ctx).Model(&models.Purchase{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyPurchaseFilter(query *gorm.DB, params repository.ListPurchasesParams) *gorm.DB {
	if params.CustomerID != nil && strings.TrimSpace(*params.CustomerID) != "" {
		query = query.Where("customer_id = ?", strings.TrimSpace(*params.CustomerID))
	}
	if params.ProductID != nil && strings.TrimSpace(*params.ProductID) != "" {
		query = query.Where("product_id = ?", strings.TrimSpace(*params.ProductID))
	}
	return query
}
