package repository

import (
	"context"
	"errors"
	"time"

	"feedbackinsights/internal/models"
)

// ErrDuplicate is returned when an explicit insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate")

type CatalogRepository interface {
	InsertPurchase(ctx context.Context, item *models.Purchase) error
	GetPurchaseByID(ctx context.Context, id uint64) (*models.Purchase, error)
	ListPurchases(ctx context.Context, params ListPurchasesParams) ([]models.Purchase, error)
	CountPurchases(ctx context.Context, params ListPurchasesParams) (int64, error)
}

type Repository interface {
	CatalogRepository

	// feedback
	InsertFeedback(ctx context.Context, item *models.Feedback) error
	GetFeedbackByID(ctx context.Context, id uint64) (*models.Feedback, error)
	ListFeedbacks(ctx context.Context, params ListFeedbacksParams) ([]models.Feedback, error)
	CountFeedbacks(ctx context.Context, params ListFeedbacksParams) (int64, error)
	SummarizeFeedbacks(ctx context.Context, params FeedbackFilter) (FeedbackSummary, error)

	// label vocabulary
	InsertLabel(ctx context.Context, item *models.Label) error
	CreateLabelIfNotExists(ctx context.Context, item *models.Label) (label *models.Label, created bool, err error)
	GetLabelByName(ctx context.Context, name string) (*models.Label, error)
	ListLabels(ctx context.Context, params ListLabelsParams) ([]models.Label, error)
	CountLabels(ctx context.Context) (int64, error)
	ListLabelNames(ctx context.Context) ([]string, error)
	InsertFeedbackLabel(ctx context.Context, item *models.FeedbackLabel) error

	// system settings
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)

	// analytics
	UpsertFeedbackDailyStats(ctx context.Context, item *models.FeedbackDailyStats) error
	ListFeedbackDailyStats(ctx context.Context, params ListDailyStatsParams) ([]models.FeedbackDailyStats, error)
	RebuildFeedbackDailyStats(ctx context.Context, since, until *time.Time) (int, error)
}

type ListPurchasesParams struct {
	Limit      int
	Offset     int
	CustomerID *string
	ProductID  *string
	OrderBy    string
	Asc        *bool
}

// FeedbackFilter narrows feedback reads. Zero values mean "no filter".
type FeedbackFilter struct {
	PurchaseID *uint64
	Sentiments []string
	Labels     []string
	Since      *time.Time
	Until      *time.Time
}

type ListFeedbacksParams struct {
	FeedbackFilter
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

type ListLabelsParams struct {
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}

type ListDailyStatsParams struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

type SentimentCount struct {
	Label    string  `json:"label"`
	Count    int64   `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

type LabelCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type FeedbackSummary struct {
	Total      int64            `json:"total"`
	AvgScore   float64          `json:"avg_score"`
	Sentiments []SentimentCount `json:"sentiments"`
	TopLabels  []LabelCount     `json:"top_labels"`
}
