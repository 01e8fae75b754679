package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "http unauthorized",
			err:  &googleapi.Error{Code: 401, Message: "API key not valid"},
			check: func(t *testing.T, err error) {
				var e *AuthError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "http forbidden wrapped",
			err:  fmt.Errorf("generate: %w", &googleapi.Error{Code: 403}),
			check: func(t *testing.T, err error) {
				var e *AuthError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "http too many requests",
			err:  &googleapi.Error{Code: 429},
			check: func(t *testing.T, err error) {
				var e *RateLimitError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "http server error",
			err:  &googleapi.Error{Code: 503},
			check: func(t *testing.T, err error) {
				var e *APICallError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 503, e.StatusCode)
			},
		},
		{
			name: "grpc unauthenticated",
			err:  status.Error(codes.Unauthenticated, "bad key"),
			check: func(t *testing.T, err error) {
				var e *AuthError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "grpc resource exhausted",
			err:  status.Error(codes.ResourceExhausted, "quota"),
			check: func(t *testing.T, err error) {
				var e *RateLimitError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "grpc deadline exceeded",
			err:  status.Error(codes.DeadlineExceeded, "slow"),
			check: func(t *testing.T, err error) {
				var e *TimeoutError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("rpc: %w", context.DeadlineExceeded),
			check: func(t *testing.T, err error) {
				var e *TimeoutError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "blocked prompt",
			err:  &genai.BlockedError{},
			check: func(t *testing.T, err error) {
				var e *MalformedResponseError
				assert.ErrorAs(t, err, &e)
			},
		},
		{
			name: "anything else",
			err:  errors.New("connection reset"),
			check: func(t *testing.T, err error) {
				var e *APICallError
				assert.ErrorAs(t, err, &e)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGeminiError(tt.err)
			tt.check(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	text, err := extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Geachte "), genai.Text("klant,")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Geachte klant,", text)

	malformed := []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}}}},
	}
	for i, resp := range malformed {
		_, err := extractTextFromResponse(resp)
		var e *MalformedResponseError
		assert.ErrorAs(t, err, &e, "case %d", i)
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "")
	assert.Error(t, err)
}
