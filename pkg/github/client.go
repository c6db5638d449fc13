// Package github fetches repository language statistics from the GitHub
// REST API and attaches them to dataset records.
package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"sort"
	"strings"

	"github.com/agentstation/toolmap/internal/transport"
	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
)

const serviceName = "github"

// Language is the number of bytes of one language in a repository.
type Language struct {
	Name  string `json:"name" yaml:"name"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Client talks to the GitHub REST API.
type Client struct {
	transport *transport.Client
	requests  *transport.RequestBuilder
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL string
	token   string
	opts    []transport.Option
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise instance or a test server.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithToken authenticates requests with a personal access token.
func WithToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTransportOptions passes options to the underlying transport client.
func WithTransportOptions(opts ...transport.Option) ClientOption {
	return func(c *clientConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// NewClient creates a GitHub API client.
func NewClient(opts ...ClientOption) *Client {
	cfg := &clientConfig{baseURL: constants.GitHubAPIURL}
	for _, opt := range opts {
		opt(cfg)
	}

	topts := []transport.Option{
		transport.WithService(serviceName),
		transport.WithAPIKey(cfg.token),
		transport.WithHeader("Accept", "application/vnd.github+json"),
		transport.WithHeader("X-GitHub-Api-Version", constants.GitHubAPIVersion),
	}
	topts = append(topts, cfg.opts...)

	return &Client{
		transport: transport.New(&transport.SchemeAuth{Scheme: transport.SchemeBearer}, topts...),
		requests:  transport.NewRequestBuilder(cfg.baseURL),
	}
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.transport.HasAPIKey()
}

// Languages returns the languages of owner/repo, largest first.
func (c *Client) Languages(ctx context.Context, owner, repo string) ([]Language, error) {
	var raw map[string]int64
	url := c.requests.URL("repos", owner, repo, "languages")
	if err := c.transport.GetJSON(ctx, url, &raw); err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, &errors.AuthenticationError{
				Service: serviceName,
				Method:  "token",
				Message: apiErr.Message,
				Err:     errors.ErrAPIKeyInvalid,
			}
		}
		return nil, err
	}
	return sortLanguages(raw), nil
}

// sortLanguages orders languages by bytes, then by name.
func sortLanguages(raw map[string]int64) []Language {
	langs := make([]Language, 0, len(raw))
	for name, bytes := range raw {
		langs = append(langs, Language{Name: name, Bytes: bytes})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Bytes != langs[j].Bytes {
			return langs[i].Bytes > langs[j].Bytes
		}
		return langs[i].Name < langs[j].Name
	})
	return langs
}
