package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

const defaultStatsLookbackDays = 30

type DailyStatsService struct {
	Repo         repository.Repository
	Logger       *zap.Logger
	Flags        *SystemSettingsService
	LookbackDays int
	Now          func() time.Time
}

// RunOnce rebuilds the rollup for the lookback window ending now.
func (s *DailyStatsService) RunOnce(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	if s.Flags != nil && !s.Flags.IsEnabled(ctx, FeatureDailyStats, true) {
		return nil
	}
	days := s.LookbackDays
	if days <= 0 {
		days = defaultStatsLookbackDays
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	since := now.AddDate(0, 0, -days)
	n, err := s.Repo.RebuildFeedbackDailyStats(ctx, &since, nil)
	if err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("feedback daily stats rebuilt", zap.Int("days", n), zap.Time("since", since))
	}
	return nil
}

func (s *DailyStatsService) List(ctx context.Context, since, until *time.Time) ([]models.FeedbackDailyStats, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	return s.Repo.ListFeedbackDailyStats(ctx, repository.ListDailyStatsParams{Limit: 500, Since: since, Until: until})
}
