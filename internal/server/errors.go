package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/klachtbrief/internal/pipeline"
)

// User-facing messages for failures detected by the HTTP layer itself.
const (
	MsgTooManyRequests = "Te veel verzoeken. Probeer het later opnieuw."
	MsgBodyTooLarge    = "Het verzoek is te groot."
	MsgNoFile          = "Geen bestand geüpload."
	MsgInvalidUpload   = "Ongeldig uploadverzoek. Verstuur het bestand als multipart-formulier."
)

// errorBody is the error shape shared by every endpoint.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return pipeline.Classify(err).Status
}

// details returns internal error detail for the response body. It is empty
// unless diagnostics are enabled.
func (s *Server) details(err error) string {
	if !s.cfg.Diagnostics || err == nil {
		return ""
	}
	var pErr *pipeline.Error
	if errors.As(err, &pErr) && pErr.Cause != nil {
		return pErr.Cause.Error()
	}
	return err.Error()
}
