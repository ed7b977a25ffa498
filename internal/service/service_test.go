package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"feedbackinsights/internal/db/dbtest"
	"feedbackinsights/internal/models"
	gormrepository "feedbackinsights/internal/repository/gorm"
)

func newRepo(t *testing.T) *gormrepository.Store {
	t.Helper()
	return gormrepository.New(dbtest.Open(t).Gorm)
}

func seedPurchase(t *testing.T, repo *gormrepository.Store) *models.Purchase {
	t.Helper()
	svc := &CatalogService{Repo: repo}
	p, err := svc.CreatePurchase(context.Background(), CreatePurchaseInput{
		CustomerID:  "CUST1001",
		ProductID:   "P100",
		ProductName: "Smartphone X Pro",
		Amount:      decimal.NewFromInt(3000),
	})
	require.NoError(t, err)
	return p
}

func seedLabels(t *testing.T, repo *gormrepository.Store, names ...string) {
	t.Helper()
	svc := &CatalogService{Repo: repo}
	for _, name := range names {
		_, err := svc.CreateLabel(context.Background(), CreateLabelInput{Name: name})
		require.NoError(t, err)
	}
}
