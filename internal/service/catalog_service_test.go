package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"feedbackinsights/internal/repository"
)

func TestCreatePurchaseValidation(t *testing.T) {
	svc := &CatalogService{Repo: newRepo(t)}
	ctx := context.Background()

	base := CreatePurchaseInput{CustomerID: "C1", ProductID: "P1", ProductName: "Fone", Amount: decimal.RequireFromString("199.90")}
	p, err := svc.CreatePurchase(ctx, base)
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	require.False(t, p.PurchaseDate.IsZero())
	require.True(t, p.Amount.Equal(decimal.RequireFromString("199.90")))

	for _, mutate := range []func(*CreatePurchaseInput){
		func(in *CreatePurchaseInput) { in.CustomerID = " " },
		func(in *CreatePurchaseInput) { in.ProductID = "" },
		func(in *CreatePurchaseInput) { in.ProductName = "" },
		func(in *CreatePurchaseInput) { in.Amount = decimal.NewFromInt(-1) },
	} {
		in := base
		mutate(&in)
		_, err := svc.CreatePurchase(ctx, in)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestCreateLabel(t *testing.T) {
	svc := &CatalogService{Repo: newRepo(t)}
	ctx := context.Background()

	l, err := svc.CreateLabel(ctx, CreateLabelInput{Name: " garantia ", Description: "Garantia do produto"})
	require.NoError(t, err)
	require.Equal(t, "garantia", l.Name)

	_, err = svc.CreateLabel(ctx, CreateLabelInput{Name: "garantia"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = svc.CreateLabel(ctx, CreateLabelInput{Name: ""})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateLabel(ctx, CreateLabelInput{Name: strings.Repeat("a", 101)})
	require.ErrorIs(t, err, ErrInvalidInput)
}
