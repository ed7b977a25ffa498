package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Purchase is an immutable customer purchase record. Feedback references it.
type Purchase struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	CustomerID  string          `gorm:"type:varchar(64);not null;index" json:"customer_id"`
	ProductID   string          `gorm:"type:varchar(64);not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"amount"`

	// Assigned by the server on creation.
	PurchaseDate time.Time `gorm:"autoCreateTime;index" json:"purchase_date"`
}

func (Purchase) TableName() string {
	return "purchases"
}
