package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/jonathan/klachtbrief/internal/types"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// GeminiClient implements Provider for Google Gemini
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey, endpoint string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete generates content with the system instruction set on the model.
func (c *GeminiClient) Complete(ctx context.Context, prompt types.PromptPair, opts Options) (string, error) {
	model := c.client.GenerativeModel(opts.Model)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if prompt.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.SystemInstruction)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.UserInstruction))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return extractTextFromResponse(resp)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &MalformedResponseError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &MalformedResponseError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", &MalformedResponseError{Message: "no text parts in response"}
	}
	return text, nil
}

// classifyGeminiError maps REST and gRPC failures from the Gemini SDK onto
// this package's error types.
func classifyGeminiError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &MalformedResponseError{Message: "response was blocked", Cause: err}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return fromStatus(gErr.Code, "provider returned an error", err)
	}

	if apiErr, ok := apierror.FromError(err); ok {
		if code := apiErr.HTTPCode(); code > 0 {
			return fromStatus(code, "provider returned an error", err)
		}
		switch apiErr.GRPCStatus().Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return &AuthError{StatusCode: 401, Message: "provider rejected the credential", Cause: err}
		case codes.ResourceExhausted:
			return &RateLimitError{Message: "provider quota exhausted", Cause: err}
		case codes.DeadlineExceeded:
			return &TimeoutError{Message: "provider deadline exceeded", Cause: err}
		}
	}

	return fromTransport(err)
}
