package inference

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx answer from a model endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

// Temporary reports whether retrying may succeed: rate limits, model cold
// starts and server-side failures.
func (e *HTTPError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	// {"error": "Model is currently loading", "estimated_time": 20.0}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && strings.TrimSpace(flat.Error) != "" {
		return &HTTPError{StatusCode: status, Message: strings.TrimSpace(flat.Error), Body: body}
	}
	// {"error": {"message": "..."}}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && strings.TrimSpace(nested.Error.Message) != "" {
		return &HTTPError{StatusCode: status, Message: strings.TrimSpace(nested.Error.Message), Body: body}
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return &HTTPError{StatusCode: status, Message: body, Body: body}
}
