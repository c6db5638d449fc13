package tagging

import (
	"context"
	stderrors "errors"
	"strings"

	"google.golang.org/genai"

	"github.com/agentstation/toolmap/pkg/constants"
	"github.com/agentstation/toolmap/pkg/errors"
)

const geminiService = "gemini"

// GeminiGenerator generates completions with the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a generator for the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, &errors.AuthenticationError{
			Service: geminiService,
			Method:  "api_key",
			Message: "GEMINI_API_KEY or GOOGLE_API_KEY must be set",
			Err:     errors.ErrAPIKeyRequired,
		}
	}
	if model == "" {
		model = constants.DefaultTagModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &errors.ConfigError{
			Component: geminiService,
			Message:   "failed to create client",
			Err:       err,
		}
	}

	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: 0.1,
	}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate implements the Generator interface.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LLMRequestTimeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", convertGeminiError(ctx, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &errors.APIError{
			Service:  geminiService,
			Message:  "empty response",
			Endpoint: g.model,
		}
	}
	return text, nil
}

// convertGeminiError maps client errors onto the shared error types so the
// runner can decide whether to retry.
func convertGeminiError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &errors.TimeoutError{
			Operation: "generate content",
			Duration:  constants.LLMRequestTimeout.String(),
			Message:   err.Error(),
		}
	}

	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return convertAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return convertAPIError(*apiErrPtr, err)
	}
	return errors.WrapAPI(geminiService, 0, err)
}

func convertAPIError(apiErr genai.APIError, err error) error {
	if apiErr.Code == 401 || apiErr.Code == 403 {
		return &errors.AuthenticationError{
			Service: geminiService,
			Method:  "api_key",
			Message: apiErr.Message,
			Err:     errors.ErrAPIKeyInvalid,
		}
	}
	return &errors.APIError{
		Service:    geminiService,
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Err:        err,
	}
}
