package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/llm"
	"github.com/jonathan/klachtbrief/internal/validation"
)

// Kind is the category of a pipeline failure.
type Kind int

// Failure kinds.
const (
	UnknownFailure Kind = iota
	InvalidInput
	UpstreamAuthFailure
	UpstreamRateLimited
	UpstreamTimeout
	UpstreamMalformedResponse
	ExtractionFailure
)

var kindNames = map[Kind]string{
	UnknownFailure:            "unknown_failure",
	InvalidInput:              "invalid_input",
	UpstreamAuthFailure:       "upstream_auth_failure",
	UpstreamRateLimited:       "upstream_rate_limited",
	UpstreamTimeout:           "upstream_timeout",
	UpstreamMalformedResponse: "upstream_malformed_response",
	ExtractionFailure:         "extraction_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// HTTPStatus returns the default status for k. ExtractionFailure is 400;
// Classify raises it to 422 for documents that could not be read.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput, ExtractionFailure:
		return http.StatusBadRequest
	case UpstreamAuthFailure:
		return http.StatusUnauthorized
	case UpstreamRateLimited:
		return http.StatusTooManyRequests
	case UpstreamTimeout:
		return http.StatusGatewayTimeout
	case UpstreamMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the generic Dutch message for k.
func (k Kind) UserMessage() string {
	switch k {
	case InvalidInput:
		return "Ongeldige aanvraag."
	case UpstreamAuthFailure:
		return "De AI-service weigert de toegang. Neem contact op met de beheerder."
	case UpstreamRateLimited:
		return "De AI-service is momenteel overbelast. Probeer het over enkele minuten opnieuw."
	case UpstreamTimeout:
		return "De AI-service reageerde niet op tijd. Probeer het later opnieuw."
	case UpstreamMalformedResponse:
		return "Ongeldig antwoord van AI service."
	case ExtractionFailure:
		return "Kon geen tekst uit het bestand halen."
	default:
		return "Er is een fout opgetreden bij het verwerken van de tekst."
	}
}

// Error is the single error shape leaving the pipeline. Message is a Dutch
// sentence safe to show to users; Cause holds the internal detail that is
// only logged.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify converts any error from the pipeline's stages into an *Error.
// Errors that are already an *Error are returned as they are.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr
	}

	var (
		validationErr *validation.Error
		extractionErr *extraction.Error
		authErr       *llm.AuthError
		rateErr       *llm.RateLimitError
		timeoutErr    *llm.TimeoutError
		malformedErr  *llm.MalformedResponseError
	)
	switch {
	case errors.As(err, &validationErr):
		return &Error{Kind: InvalidInput, Status: InvalidInput.HTTPStatus(), Message: validationErr.Message, Cause: err}
	case errors.As(err, &extractionErr):
		status := http.StatusUnprocessableEntity
		if extractionErr.IsInputProblem() {
			status = ExtractionFailure.HTTPStatus()
		}
		return &Error{Kind: ExtractionFailure, Status: status, Message: extractionErr.Message, Cause: err}
	case errors.As(err, &authErr):
		return newError(UpstreamAuthFailure, err)
	case errors.As(err, &rateErr):
		return newError(UpstreamRateLimited, err)
	case errors.As(err, &timeoutErr):
		return newError(UpstreamTimeout, err)
	case errors.As(err, &malformedErr):
		return newError(UpstreamMalformedResponse, err)
	default:
		return newError(UnknownFailure, err)
	}
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Status: kind.HTTPStatus(), Message: kind.UserMessage(), Cause: cause}
}
