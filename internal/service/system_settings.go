package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"feedbackinsights/internal/models"
	"feedbackinsights/internal/repository"
)

const (
	FeatureSentiment  = "feature.sentiment"
	FeatureLabeling   = "feature.labeling"
	FeatureNotify     = "feature.notify"
	FeatureDailyStats = "feature.daily_stats"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureSentiment:  true,
		FeatureLabeling:   true,
		FeatureNotify:     true,
		FeatureDailyStats: true,
	}
}

type Switch struct {
	Key       string    `json:"key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SystemSettingsService struct {
	Repo repository.Repository
}

// EnsureDefaultSwitches inserts missing switches. Stored values are never
// overwritten.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

// SetEnabled stores a known switch. "sentiment" is accepted for
// "feature.sentiment".
func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) (Switch, error) {
	key = SwitchKey(key)
	if _, ok := DefaultFeatureSwitches()[key]; !ok {
		return Switch{}, fmt.Errorf("%w: %s", ErrUnknownSwitch, key)
	}
	now := time.Now().UTC()
	out := Switch{Key: key, Enabled: enabled, UpdatedAt: now}
	if s == nil || s.Repo == nil {
		return out, nil
	}
	raw, _ := json.Marshal(enabled)
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		UpdatedAt:   now,
	}
	if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
		return Switch{}, err
	}
	return out, nil
}

// ListSwitches reports every known switch, falling back to defaults for
// switches that were never stored.
func (s *SystemSettingsService) ListSwitches(ctx context.Context) ([]Switch, error) {
	defaults := DefaultFeatureSwitches()
	stored := map[string]models.SystemSetting{}
	if s != nil && s.Repo != nil {
		prefix := "feature."
		items, err := s.Repo.ListSystemSettings(ctx, repository.ListSystemSettingsParams{Limit: 500, Prefix: &prefix})
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			stored[item.Key] = item
		}
	}
	out := make([]Switch, 0, len(defaults))
	for key, enabled := range defaults {
		sw := Switch{Key: key, Enabled: enabled}
		if item, ok := stored[key]; ok {
			var v bool
			if err := json.Unmarshal(item.Value, &v); err == nil {
				sw.Enabled = v
			}
			sw.UpdatedAt = item.UpdatedAt
		}
		out = append(out, sw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func SwitchKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" && !strings.HasPrefix(name, "feature.") {
		name = "feature." + name
	}
	return name
}
