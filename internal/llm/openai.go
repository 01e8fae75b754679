package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Provider using the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates an OpenAI provider. baseURL overrides the API
// endpoint when non-empty.
func NewOpenAIClient(apiKey, baseURL string, httpClient *http.Client) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key cannot be empty")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OpenAIClient{client: openai.NewClientWithConfig(config)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends a single chat completion with a system and a user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt types.PromptPair, opts Options) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.UserInstruction,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Message: "response contained no choices"}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &MalformedResponseError{Message: "response contained no message content"}
	}
	return content, nil
}

// Close releases resources held by the client.
func (c *OpenAIClient) Close() error {
	return nil
}

// classifyOpenAIError maps go-openai errors onto this package's error types.
// Provider payloads stay in Cause and are never copied into Message.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, "provider returned an error", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, "provider rejected the request", err)
	}
	return fromTransport(err)
}
