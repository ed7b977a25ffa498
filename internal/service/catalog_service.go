package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

const maxLabelNameRunes = 100

type CreatePurchaseInput struct {
	CustomerID  string
	ProductID   string
	ProductName string
	Amount      decimal.Decimal
}

type CreateLabelInput struct {
	Name        string
	Description string
}

// CatalogService creates purchases and labels on explicit request.
type CatalogService struct {
	Repo repository.Repository
}

func (s *CatalogService) CreatePurchase(ctx context.Context, in CreatePurchaseInput) (*models.Purchase, error) {
	item := &models.Purchase{
		CustomerID:  strings.TrimSpace(in.CustomerID),
		ProductID:   strings.TrimSpace(in.ProductID),
		ProductName: strings.TrimSpace(in.ProductName),
		Amount:      in.Amount.Round(2),
	}
	switch {
	case item.CustomerID == "":
		return nil, invalidf("customer_id is required")
	case item.ProductID == "":
		return nil, invalidf("product_id is required")
	case item.ProductName == "":
		return nil, invalidf("product_name is required")
	case item.Amount.IsNegative():
		return nil, invalidf("amount must not be negative")
	}
	if err := s.Repo.InsertPurchase(ctx, item); err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	return item, nil
}

// CreateLabel inserts a vocabulary entry. A taken name returns
// repository.ErrDuplicate.
func (s *CatalogService) CreateLabel(ctx context.Context, in CreateLabelInput) (*models.Label, error) {
	item := &models.Label{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if item.Name == "" {
		return nil, invalidf("name is required")
	}
	if utf8.RuneCountInString(item.Name) > maxLabelNameRunes {
		return nil, invalidf("name must be at most %d characters", maxLabelNameRunes)
	}
	if err := s.Repo.InsertLabel(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
