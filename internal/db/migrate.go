package db

import (
	"feedbackinsights/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	// Parents before children so FK constraints resolve.
	return db.Gorm.AutoMigrate(
		&models.Purchase{},
		&models.Label{},
		&models.Feedback{},
		&models.FeedbackLabel{},
		&models.SystemSetting{},
		&models.FeedbackDailyStats{},
	)
}
