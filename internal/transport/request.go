package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/toolmap/pkg/errors"
	"github.com/agentstation/toolmap/pkg/logging"
)

// RequestBuilder builds endpoint URLs under a base URL.
type RequestBuilder struct {
	baseURL string
}

// NewRequestBuilder creates a new request builder for a base URL.
func NewRequestBuilder(baseURL string) *RequestBuilder {
	return &RequestBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// GetBaseURL returns the base URL for API requests.
func (rb *RequestBuilder) GetBaseURL() string {
	return rb.baseURL
}

// URL joins escaped path segments onto the base URL.
func (rb *RequestBuilder) URL(segments ...string) string {
	var b strings.Builder
	b.WriteString(rb.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// DecodeResponse decodes a JSON response into the target structure.
// Non-200 responses become an *errors.APIError carrying the status code.
func DecodeResponse(resp *http.Response, service string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &errors.APIError{
			Service:     service,
			StatusCode:  resp.StatusCode,
			Message:     errorMessage(body, resp.Status),
			RateLimited: IsRateLimitResponse(resp),
		}
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.String()
		}
		return apiErr
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}

// IsRateLimitResponse reports whether resp signals an exhausted quota.
// GitHub answers 403 with X-RateLimit-Remaining: 0 for primary limits.
func IsRateLimitResponse(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode == http.StatusForbidden {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != "" {
			return true
		}
	}
	return false
}

// errorMessage prefers the "message" field of a JSON error body.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}
