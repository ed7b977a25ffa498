package models

import "time"

// FeedbackDailyStats is the per-day sentiment rollup (UTC days).
type FeedbackDailyStats struct {
	ID   uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Date time.Time `gorm:"not null;uniqueIndex:idx_feedback_daily" json:"date"`

	Total         int `gorm:"not null;default:0" json:"total"`
	PositiveCount int `gorm:"not null;default:0" json:"positive_count"`
	NeutralCount  int `gorm:"not null;default:0" json:"neutral_count"`
	NegativeCount int `gorm:"not null;default:0" json:"negative_count"`
	LabeledCount  int `gorm:"not null;default:0" json:"labeled_count"`

	AvgScore float64 `gorm:"not null;default:0" json:"avg_score"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FeedbackDailyStats) TableName() string {
	return "feedback_daily_stats"
}
