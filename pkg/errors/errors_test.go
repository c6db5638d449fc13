package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/agentstation/toolmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "repository",
			ID:       "octo/hello",
		}
		assert.Equal(t, "repository with ID octo/hello not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("record", "p1")
		assert.Equal(t, "record with ID p1 not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("record", "test")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "id_field",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field id_field: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Message: "invalid configuration",
		}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewValidationError("max_tags", 0, "must be positive")
		assert.Contains(t, err.Error(), "max_tags")
		assert.Contains(t, err.Error(), "must be positive")
		assert.Equal(t, 0, err.Value)
	})
}

func TestAPIError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &pkgerrors.APIError{
			Service:    "github",
			StatusCode: http.StatusTooManyRequests,
			Message:    "rate limit exceeded",
			Endpoint:   "https://api.github.com/repos/octo/hello/languages",
		}
		assert.Contains(t, err.Error(), "github")
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "rate limit exceeded")
		assert.True(t, pkgerrors.IsRateLimited(err))
		assert.True(t, pkgerrors.IsRetryable(err))
	})

	t.Run("without status code", func(t *testing.T) {
		err := pkgerrors.NewAPIError("gemini", 0, "empty response")
		assert.Equal(t, "API error from gemini: empty response", err.Error())
		assert.False(t, pkgerrors.IsRetryable(err))
	})

	t.Run("forbidden with exhausted quota", func(t *testing.T) {
		err := &pkgerrors.APIError{
			Service:     "github",
			StatusCode:  http.StatusForbidden,
			Message:     "API rate limit exceeded",
			RateLimited: true,
		}
		assert.True(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("forbidden without quota signal", func(t *testing.T) {
		err := pkgerrors.NewAPIError("github", http.StatusForbidden, "resource not accessible")
		assert.False(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsRetryable(err))
	})

	t.Run("not found", func(t *testing.T) {
		err := pkgerrors.NewAPIError("github", http.StatusNotFound, "Not Found")
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.False(t, pkgerrors.IsRetryable(err))
	})

	t.Run("server error", func(t *testing.T) {
		err := pkgerrors.NewAPIError("github", http.StatusBadGateway, "bad gateway")
		assert.True(t, pkgerrors.IsServiceUnavailable(err))
		assert.True(t, pkgerrors.IsRetryable(err))
	})

	t.Run("with wrapped error", func(t *testing.T) {
		baseErr := errors.New("connection reset")
		err := &pkgerrors.APIError{
			Service: "gemini",
			Message: "request failed",
			Err:     baseErr,
		}
		assert.True(t, errors.Is(err, baseErr))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		baseErr := errors.New("file not found")
		err := pkgerrors.NewConfigError("taxonomy", "cannot load", baseErr)
		assert.Equal(t, "configuration error in taxonomy: cannot load", err.Error())
		assert.True(t, errors.Is(err, baseErr))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "missing input path"}
		assert.Equal(t, "configuration error: missing input path", err.Error())
	})
}

func TestDatasetError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		baseErr := pkgerrors.NewParseError("json", "funding.json", "unexpected EOF", nil)
		err := pkgerrors.NewDatasetError("self-funding", "funding.json", baseErr)
		assert.Contains(t, err.Error(), "self-funding")
		assert.Contains(t, err.Error(), "funding.json")
		assert.True(t, pkgerrors.IsValidationError(err))

		var parseErr *pkgerrors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "json", parseErr.Format)
	})

	t.Run("without path", func(t *testing.T) {
		err := &pkgerrors.DatasetError{Dataset: "op-rewards", Err: errors.New("boom")}
		assert.Equal(t, "dataset op-rewards: boom", err.Error())
	})
}

func TestIOError(t *testing.T) {
	t.Run("with path", func(t *testing.T) {
		baseErr := errors.New("permission denied")
		err := pkgerrors.NewIOError("write", "/out/projects.collapsed.json", baseErr)
		assert.Contains(t, err.Error(), "write")
		assert.Contains(t, err.Error(), "/out/projects.collapsed.json")
		assert.Contains(t, err.Error(), "permission denied")
		assert.True(t, errors.Is(err, baseErr))
	})

	t.Run("without path", func(t *testing.T) {
		err := &pkgerrors.IOError{Operation: "read", Message: "stdin closed"}
		assert.Equal(t, "IO error during read: stdin closed", err.Error())
	})

	t.Run("nil error", func(t *testing.T) {
		err := pkgerrors.NewIOError("rename", "a.json", nil)
		assert.Empty(t, err.Message)
		assert.Nil(t, err.Unwrap())
	})
}

func TestResourceError(t *testing.T) {
	t.Run("with ID", func(t *testing.T) {
		err := pkgerrors.NewResourceError("tag", "record", "p1", errors.New("quota"))
		assert.Equal(t, "failed to tag record p1: quota", err.Error())
	})

	t.Run("without ID", func(t *testing.T) {
		err := pkgerrors.NewResourceError("create", "client", "", errors.New("no key"))
		assert.Equal(t, "failed to create client: no key", err.Error())
	})
}

func TestParseError(t *testing.T) {
	t.Run("with position", func(t *testing.T) {
		err := &pkgerrors.ParseError{
			Format:  "ndjson",
			File:    "records.ndjson",
			Line:    7,
			Column:  12,
			Message: "invalid character",
		}
		assert.Equal(t, "parse error in ndjson at records.ndjson:7:12: invalid character", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("with file only", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "taxonomy.yaml", "bad indent", nil)
		assert.Equal(t, "parse error in yaml file taxonomy.yaml: bad indent", err.Error())
	})

	t.Run("without file", func(t *testing.T) {
		err := pkgerrors.NewParseError("json", "", "unexpected end", nil)
		assert.Equal(t, "json parse error: unexpected end", err.Error())
	})
}

func TestAuthenticationError(t *testing.T) {
	t.Run("with service", func(t *testing.T) {
		err := pkgerrors.NewAuthenticationError("gemini", "api_key", "missing", nil)
		assert.Equal(t, "authentication error for gemini (api_key): missing", err.Error())
		assert.True(t, pkgerrors.IsAPIKeyError(err))
	})

	t.Run("without service", func(t *testing.T) {
		err := &pkgerrors.AuthenticationError{Method: "token", Message: "expired"}
		assert.Equal(t, "authentication error (token): expired", err.Error())
	})
}

func TestTimeoutError(t *testing.T) {
	t.Run("with duration", func(t *testing.T) {
		err := &pkgerrors.TimeoutError{
			Operation: "fetch languages",
			Duration:  "30s",
			Message:   "github not responding",
		}
		assert.Contains(t, err.Error(), "fetch languages")
		assert.Contains(t, err.Error(), "30s")
		assert.True(t, errors.Is(err, pkgerrors.ErrTimeout))
		assert.True(t, pkgerrors.IsRetryable(err))
	})

	t.Run("without duration", func(t *testing.T) {
		err := pkgerrors.NewTimeoutError("tag record", "", "deadline exceeded")
		assert.NotContains(t, err.Error(), "after")
	})
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", pkgerrors.ErrNotFound, pkgerrors.IsNotFound, true},
		{"validation", pkgerrors.ErrInvalidInput, pkgerrors.IsValidationError, true},
		{"api key required", pkgerrors.ErrAPIKeyRequired, pkgerrors.IsAPIKeyError, true},
		{"api key invalid", pkgerrors.ErrAPIKeyInvalid, pkgerrors.IsAPIKeyError, true},
		{"rate limited", pkgerrors.ErrRateLimited, pkgerrors.IsRateLimited, true},
		{"timeout", pkgerrors.ErrTimeout, pkgerrors.IsTimeout, true},
		{"canceled", pkgerrors.ErrCanceled, pkgerrors.IsCanceled, true},
		{"unavailable", pkgerrors.ErrServiceUnavailable, pkgerrors.IsServiceUnavailable, true},
		{"unrelated", errors.New("other"), pkgerrors.IsNotFound, false},
		{"nil", nil, pkgerrors.IsRetryable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("f", nil))
		assert.NoError(t, pkgerrors.WrapIO("read", "p", nil))
		assert.NoError(t, pkgerrors.WrapResource("load", "config", "", nil))
		assert.NoError(t, pkgerrors.WrapParse("json", "p", nil))
		assert.NoError(t, pkgerrors.WrapAPI("github", 500, nil))
	})

	t.Run("wrap validation", func(t *testing.T) {
		err := pkgerrors.WrapValidation("website", errors.New("not a url"))
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "website")
	})

	t.Run("wrap io", func(t *testing.T) {
		base := errors.New("disk full")
		err := pkgerrors.WrapIO("write", "out.json", base)
		assert.True(t, errors.Is(err, base))
	})

	t.Run("wrap parse", func(t *testing.T) {
		base := errors.New("invalid character '}'")
		err := pkgerrors.WrapParse("json", "in.json", base)
		var parseErr *pkgerrors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "in.json", parseErr.File)
		assert.True(t, errors.Is(err, base))
	})

	t.Run("wrap api", func(t *testing.T) {
		err := pkgerrors.WrapAPI("github", http.StatusServiceUnavailable, errors.New("maintenance"))
		assert.True(t, pkgerrors.IsServiceUnavailable(err))
	})
}

func TestErrorChaining(t *testing.T) {
	root := pkgerrors.NewAPIError("github", http.StatusTooManyRequests, "slow down")
	mid := pkgerrors.WrapResource("fetch", "repository", "octo/hello", root)
	top := fmt.Errorf("enrich: %w", mid)

	assert.True(t, pkgerrors.IsRateLimited(top))

	var apiErr *pkgerrors.APIError
	require.True(t, errors.As(top, &apiErr))
	assert.Equal(t, "github", apiErr.Service)

	var resErr *pkgerrors.ResourceError
	require.True(t, errors.As(top, &resErr))
	assert.Equal(t, "octo/hello", resErr.ID)
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		pkgerrors.ErrNotFound,
		pkgerrors.ErrInvalidInput,
		pkgerrors.ErrAPIKeyRequired,
		pkgerrors.ErrAPIKeyInvalid,
		pkgerrors.ErrServiceUnavailable,
		pkgerrors.ErrRateLimited,
		pkgerrors.ErrTimeout,
		pkgerrors.ErrCanceled,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
