package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPurchaseAmountIsJSONNumber(t *testing.T) {
	raw, err := json.Marshal(Purchase{ID: 1, Amount: decimal.RequireFromString("3000.50")})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"amount":3000.5`)

	var back Purchase
	require.NoError(t, json.Unmarshal(raw, &back))
	require.True(t, back.Amount.Equal(decimal.RequireFromString("3000.50")))
}
