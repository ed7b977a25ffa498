package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co"

type HFOptions struct {
	BaseURL        string
	APIKey         string
	SentimentModel string
	ZeroShotModel  string

	Timeout    time.Duration
	MaxRetries int
	// RetryWait is the first backoff interval; it doubles per attempt.
	RetryWait time.Duration

	HTTPClient *http.Client
}

// HFBackend calls a Hugging Face Inference API compatible endpoint:
// POST {base}/models/{model}.
type HFBackend struct {
	baseURL        string
	apiKey         string
	sentimentModel string
	zeroShotModel  string

	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration

	httpClient *http.Client
}

func NewHF(opts HFOptions) (*HFBackend, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	if strings.TrimSpace(opts.SentimentModel) == "" {
		return nil, errors.New("hf: sentiment model required")
	}
	if strings.TrimSpace(opts.ZeroShotModel) == "" {
		return nil, errors.New("hf: zero-shot model required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryWait := opts.RetryWait
	if retryWait <= 0 {
		retryWait = 500 * time.Millisecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &HFBackend{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(opts.APIKey),
		sentimentModel: strings.TrimSpace(opts.SentimentModel),
		zeroShotModel:  strings.TrimSpace(opts.ZeroShotModel),
		timeout:        timeout,
		maxRetries:     maxRetries,
		retryWait:      retryWait,
		httpClient:     hc,
	}, nil
}

func (b *HFBackend) Name() string { return "hf" }

// Load issues one request per model so cold models are spun up before the
// first real comment arrives.
func (b *HFBackend) Load(ctx context.Context) error {
	if _, err := b.Sentiment(ctx, "ok"); err != nil {
		return fmt.Errorf("warm %s: %w", b.sentimentModel, err)
	}
	if _, err := b.ZeroShot(ctx, "ok", []string{"ok"}); err != nil {
		return fmt.Errorf("warm %s: %w", b.zeroShotModel, err)
	}
	return nil
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfTextRequest struct {
	Inputs  string    `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfZeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type hfZeroShotRequest struct {
	Inputs     string               `json:"inputs"`
	Parameters hfZeroShotParameters `json:"parameters"`
	Options    hfOptions            `json:"options"`
}

type hfZeroShotResult struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (b *HFBackend) Sentiment(ctx context.Context, text string) (Sentiment, error) {
	var raw json.RawMessage
	req := hfTextRequest{Inputs: text, Options: hfOptions{WaitForModel: true}}
	if err := b.doJSON(ctx, b.sentimentModel, req, &raw); err != nil {
		return Sentiment{}, err
	}
	scores, err := decodeClassification(raw)
	if err != nil {
		return Sentiment{}, err
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return Sentiment{Score: best.Score, Label: strings.ToLower(strings.TrimSpace(best.Label))}, nil
}

func (b *HFBackend) ZeroShot(ctx context.Context, text string, candidates []string) ([]LabelScore, error) {
	if len(candidates) == 0 {
		return []LabelScore{}, nil
	}
	var raw json.RawMessage
	req := hfZeroShotRequest{
		Inputs:     text,
		Parameters: hfZeroShotParameters{CandidateLabels: candidates, MultiLabel: true},
		Options:    hfOptions{WaitForModel: true},
	}
	if err := b.doJSON(ctx, b.zeroShotModel, req, &raw); err != nil {
		return nil, err
	}
	return decodeZeroShot(raw)
}

func (b *HFBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

// decodeClassification accepts [[{label,score}]] and [{label,score}].
func decodeClassification(raw json.RawMessage) ([]LabelScore, error) {
	var nested [][]LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []LabelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, ErrEmptyResponse
}

// decodeZeroShot accepts {labels,scores}, [{labels,scores}] and [{label,score}].
func decodeZeroShot(raw json.RawMessage) ([]LabelScore, error) {
	var single hfZeroShotResult
	if err := json.Unmarshal(raw, &single); err == nil && len(single.Labels) > 0 {
		return zipScores(single)
	}
	var batch []hfZeroShotResult
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) > 0 && len(batch[0].Labels) > 0 {
		return zipScores(batch[0])
	}
	var flat []LabelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, ErrEmptyResponse
}

func zipScores(res hfZeroShotResult) ([]LabelScore, error) {
	if len(res.Labels) != len(res.Scores) {
		return nil, fmt.Errorf("zero-shot response length mismatch: labels=%d scores=%d", len(res.Labels), len(res.Scores))
	}
	out := make([]LabelScore, len(res.Labels))
	for i := range res.Labels {
		out[i] = LabelScore{Label: res.Labels[i], Score: res.Scores[i]}
	}
	return out, nil
}

func (b *HFBackend) doJSON(ctx context.Context, model string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx2, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	endpoint := b.baseURL + "/models/" + escapeModel(model)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(b.retryWait),
				backoff.WithMaxInterval(10*time.Second),
				backoff.WithMaxElapsedTime(0),
			),
			uint64(b.maxRetries),
		),
		ctx2,
	)

	var respBody []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx2, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if b.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+b.apiKey)
		}
		resp, err := b.httpClient.Do(req)
		if err != nil {
			return err
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			herr := parseHTTPError(resp.StatusCode, raw)
			var typed *HTTPError
			if errors.As(herr, &typed) && typed.Temporary() {
				return herr
			}
			return backoff.Permanent(herr)
		}
		respBody = raw
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// escapeModel keeps the owner/name separator of hub model ids.
func escapeModel(model string) string {
	parts := strings.Split(strings.TrimSpace(model), "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}
