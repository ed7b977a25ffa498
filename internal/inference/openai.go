package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type OpenAIOptions struct {
	// BaseURL defaults to the public OpenAI endpoint. Any OpenAI-compatible
	// server (vLLM, Ollama) works.
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIBackend asks a chat model for JSON verdicts instead of running the
// dedicated classifiers.
type OpenAIBackend struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

const sentimentSystemPrompt = `You classify the sentiment of customer product reviews written in any language.
Reply with a JSON object {"label": "positive"|"neutral"|"negative", "score": <confidence between 0 and 1>}.`

const zeroShotSystemPrompt = `You tag customer product reviews with topics.
For every candidate topic, estimate independently the probability (0 to 1) that the review is about it.
Reply with a JSON object {"scores": {"<candidate>": <probability>, ...}} containing every candidate exactly once.`

func NewOpenAI(opts OpenAIOptions) (*OpenAIBackend, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("openai: model required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	cc := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cc.BaseURL = strings.TrimSuffix(base, "/")
	}
	cc.HTTPClient = hc
	return &OpenAIBackend{
		client:     openai.NewClientWithConfig(cc),
		model:      model,
		timeout:    timeout,
		httpClient: hc,
	}, nil
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Load(ctx context.Context) error {
	ctx2, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if _, err := b.client.GetModel(ctx2, b.model); err != nil {
		return fmt.Errorf("lookup model %s: %w", b.model, err)
	}
	return nil
}

func (b *OpenAIBackend) Sentiment(ctx context.Context, text string) (Sentiment, error) {
	var out struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := b.completeJSON(ctx, sentimentSystemPrompt, text, &out); err != nil {
		return Sentiment{}, err
	}
	label := strings.ToLower(strings.TrimSpace(out.Label))
	switch label {
	case LabelPositive, LabelNeutral, LabelNegative:
	default:
		return Sentiment{}, fmt.Errorf("openai: unexpected sentiment label %q", out.Label)
	}
	return Sentiment{Score: clamp01(out.Score), Label: label}, nil
}

func (b *OpenAIBackend) ZeroShot(ctx context.Context, text string, candidates []string) ([]LabelScore, error) {
	if len(candidates) == 0 {
		return []LabelScore{}, nil
	}
	list, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}
	prompt := "Candidates: " + string(list) + "\nReview: " + text
	var out struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := b.completeJSON(ctx, zeroShotSystemPrompt, prompt, &out); err != nil {
		return nil, err
	}
	if len(out.Scores) == 0 {
		return nil, ErrEmptyResponse
	}
	scores := make([]LabelScore, 0, len(candidates))
	for _, c := range candidates {
		if s, ok := out.Scores[c]; ok {
			scores = append(scores, LabelScore{Label: c, Score: clamp01(s)})
		}
	}
	return scores, nil
}

func (b *OpenAIBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

func (b *OpenAIBackend) completeJSON(ctx context.Context, system, user string, out any) error {
	ctx2, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	resp, err := b.client.CreateChatCompletion(ctx2, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyResponse
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("openai: decode verdict: %w", err)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
