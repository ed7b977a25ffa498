package models

import "time"

const (
	SentimentPositive = "Positivo"
	SentimentNeutral  = "Neutro"
	SentimentNegative = "Negativo"
)

// Feedback is a customer comment about a purchase, scored once at ingestion
// and never mutated afterwards.
type Feedback struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	PurchaseID uint64 `gorm:"not null;index" json:"purchase_id"`
	Comment    string `gorm:"type:text;not null" json:"comment"`

	SentimentScore float64 `gorm:"not null;default:0" json:"sentiment_score"`
	// One of SentimentPositive, SentimentNeutral, SentimentNegative.
	SentimentLabel string `gorm:"type:varchar(16);not null;index" json:"sentiment_label"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Purchase *Purchase       `gorm:"foreignKey:PurchaseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Labels   []FeedbackLabel `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"labels"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
