package models

// FeedbackLabel links a feedback to a vocabulary label.
type FeedbackLabel struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FeedbackID uint64 `gorm:"not null;uniqueIndex:uniq_feedback_label;index" json:"feedback_id"`
	LabelID    uint64 `gorm:"not null;uniqueIndex:uniq_feedback_label;index" json:"label_id"`

	Label Label `gorm:"foreignKey:LabelID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"label"`
}

func (FeedbackLabel) TableName() string {
	return "feedback_labels"
}
