package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/llm"
	"github.com/jonathan/klachtbrief/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		status  int
		message string
	}{
		{
			name:    "validation",
			err:     &validation.Error{Field: "text", Message: validation.MsgTextRequired},
			kind:    InvalidInput,
			status:  http.StatusBadRequest,
			message: validation.MsgTextRequired,
		},
		{
			name:    "auth",
			err:     &llm.AuthError{StatusCode: 401, Message: "bad key"},
			kind:    UpstreamAuthFailure,
			status:  http.StatusUnauthorized,
			message: UpstreamAuthFailure.UserMessage(),
		},
		{
			name:    "rate limit wrapped",
			err:     fmt.Errorf("completion: %w", &llm.RateLimitError{Message: "slow down"}),
			kind:    UpstreamRateLimited,
			status:  http.StatusTooManyRequests,
			message: UpstreamRateLimited.UserMessage(),
		},
		{
			name:    "timeout",
			err:     &llm.TimeoutError{Message: "deadline"},
			kind:    UpstreamTimeout,
			status:  http.StatusGatewayTimeout,
			message: UpstreamTimeout.UserMessage(),
		},
		{
			name:    "malformed",
			err:     &llm.MalformedResponseError{Message: "no choices"},
			kind:    UpstreamMalformedResponse,
			status:  http.StatusBadGateway,
			message: "Ongeldig antwoord van AI service.",
		},
		{
			name:    "upload too large",
			err:     &extraction.Error{Reason: extraction.ReasonTooLarge, Message: "Bestand is te groot."},
			kind:    ExtractionFailure,
			status:  http.StatusBadRequest,
			message: "Bestand is te groot.",
		},
		{
			name:    "corrupt document",
			err:     &extraction.Error{Reason: extraction.ReasonCorrupt, Message: "Kon het bestand niet lezen."},
			kind:    ExtractionFailure,
			status:  http.StatusUnprocessableEntity,
			message: "Kon het bestand niet lezen.",
		},
		{
			name:    "other provider failure",
			err:     &llm.APICallError{StatusCode: 500, Message: "boom"},
			kind:    UnknownFailure,
			status:  http.StatusInternalServerError,
			message: "Er is een fout opgetreden bij het verwerken van de tekst.",
		},
		{
			name:    "plain error",
			err:     errors.New("boom"),
			kind:    UnknownFailure,
			status:  http.StatusInternalServerError,
			message: "Er is een fout opgetreden bij het verwerken van de tekst.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.message, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_AlreadyClassified(t *testing.T) {
	orig := &Error{Kind: UpstreamTimeout, Status: http.StatusGatewayTimeout, Message: "x"}
	assert.Same(t, orig, Classify(fmt.Errorf("wrapped: %w", orig)))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "invalid_input", InvalidInput.String())
	assert.Equal(t, "extraction_failure", ExtractionFailure.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
