package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolmap/pkg/errors"
)

func TestClientAppliesAuthAndHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New(&SchemeAuth{Scheme: SchemeToken},
		WithAPIKey("secret"),
		WithService("github"),
		WithHeader("X-GitHub-Api-Version", "2022-11-28"),
	)
	assert.True(t, c.HasAPIKey())
	assert.Equal(t, "github", c.Service())

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), server.URL, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "token secret", got.Get("Authorization"))
	assert.Equal(t, "2022-11-28", got.Get("X-GitHub-Api-Version"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClientWithoutKeySendsNoAuth(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(&BearerAuth{})
	assert.False(t, c.HasAPIKey())

	var out map[string]any
	require.NoError(t, c.GetJSON(context.Background(), server.URL, &out))
	assert.Empty(t, auth)
}

func TestDecodeResponseErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		headers     map[string]string
		body        string
		wantMessage string
		check       func(error) bool
	}{
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"message":"Not Found"}`,
			wantMessage: "Not Found",
			check:       errors.IsNotFound,
		},
		{
			name:        "too many requests",
			status:      http.StatusTooManyRequests,
			body:        `slow down`,
			wantMessage: "slow down",
			check:       errors.IsRateLimited,
		},
		{
			name:        "exhausted quota",
			status:      http.StatusForbidden,
			headers:     map[string]string{"X-RateLimit-Remaining": "0"},
			body:        `{"message":"API rate limit exceeded"}`,
			wantMessage: "API rate limit exceeded",
			check:       errors.IsRateLimited,
		},
		{
			name:        "server error",
			status:      http.StatusBadGateway,
			wantMessage: "502 Bad Gateway",
			check:       errors.IsRetryable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var out map[string]any
			err := New(nil, WithService("github")).GetJSON(context.Background(), server.URL, &out)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error class: %v", err)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, "github", apiErr.Service)
		})
	}
}

func TestForbiddenWithoutQuotaIsNotRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	var out map[string]any
	err := New(nil).GetJSON(context.Background(), server.URL, &out)
	require.Error(t, err)
	assert.False(t, errors.IsRateLimited(err))
	assert.False(t, errors.IsRetryable(err))
}

func TestDecodeResponseInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := New(nil).GetJSON(context.Background(), server.URL, &out)
	assert.True(t, errors.IsValidationError(err))
}

func TestClientCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Get(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestBuilder(t *testing.T) {
	rb := NewRequestBuilder("https://api.github.com/")
	assert.Equal(t, "https://api.github.com", rb.GetBaseURL())
	assert.Equal(t, "https://api.github.com/repos/o/r%20x/languages", rb.URL("repos", "o", "r x", "languages"))
}
