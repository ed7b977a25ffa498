package inference

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"feedbackinsights/internal/config"
)

const (
	BackendHF     = "hf"
	BackendOpenAI = "openai"
	BackendRules  = "rules"
)

// NewBackend builds the backend named by cfg.Backend. Models are not loaded
// until the Analyzer is constructed.
func NewBackend(cfg config.InferenceConfig, logger *zap.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendHF:
		return NewHF(HFOptions{
			BaseURL:        cfg.BaseURL,
			APIKey:         cfg.APIKey,
			SentimentModel: cfg.SentimentModel,
			ZeroShotModel:  cfg.ZeroShotModel,
			Timeout:        cfg.Timeout,
			MaxRetries:     cfg.MaxRetries,
		})
	case BackendOpenAI:
		return NewOpenAI(OpenAIOptions{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.ChatModel,
			Timeout: cfg.Timeout,
		})
	case BackendRules:
		return NewRules(logger), nil
	default:
		return nil, fmt.Errorf("inference: unknown backend %q", cfg.Backend)
	}
}

func OptionsFromConfig(cfg config.InferenceConfig, logger *zap.Logger) Options {
	return Options{
		Threshold:      cfg.Threshold,
		MaxLabels:      cfg.MaxLabels,
		MaxConcurrency: cfg.MaxConcurrency,
		Logger:         logger,
	}
}
