package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/logging"
	"github.com/jonathan/klachtbrief/internal/pipeline"
	"github.com/jonathan/klachtbrief/internal/prompts"
	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/jonathan/klachtbrief/internal/validation"
	"go.uber.org/zap"
)

// uploadField is the multipart form field carrying the document.
const uploadField = "file"

// handleProcessText rewrites or answers a complaint letter.
func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		status := HTTPStatus(err)
		message := validation.MsgInvalidBody
		if status == http.StatusRequestEntityTooLarge {
			message = MsgBodyTooLarge
		} else {
			status = http.StatusBadRequest
		}
		s.errorResponse(w, status, message)
		return
	}

	text, err := s.orchestrator.Handle(r.Context(), body)
	if err != nil {
		pErr := pipeline.Classify(err)
		s.jsonResponse(w, pErr.Status, types.ProcessTextResponse{
			Success: false,
			Error:   pErr.Message,
			Details: s.details(pErr),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ProcessTextResponse{
		Success:       true,
		ProcessedText: text,
	})
}

// handleUploadFile extracts the text of an uploaded PDF or DOCX. The file
// is streamed from the request into memory and never written to disk.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	mr, err := r.MultipartReader()
	if err != nil {
		s.uploadError(w, http.StatusBadRequest, MsgInvalidUpload, "", err)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			s.uploadError(w, http.StatusBadRequest, MsgNoFile, "", nil)
			return
		}
		if err != nil {
			if HTTPStatus(err) == http.StatusRequestEntityTooLarge {
				s.extractionFailed(w, r, s.extractor.TooLarge(""))
				return
			}
			s.uploadError(w, http.StatusBadRequest, MsgInvalidUpload, "", err)
			return
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		filename := extraction.BaseName(part.FileName())
		data, err := io.ReadAll(io.LimitReader(part, s.extractor.MaxBytes+1))
		_ = part.Close()
		if err != nil {
			if HTTPStatus(err) == http.StatusRequestEntityTooLarge {
				s.extractionFailed(w, r, s.extractor.TooLarge(filename))
				return
			}
			s.uploadError(w, http.StatusBadRequest, MsgInvalidUpload, filename, err)
			return
		}
		if int64(len(data)) > s.extractor.MaxBytes {
			s.extractionFailed(w, r, s.extractor.TooLarge(filename))
			return
		}

		text, err := s.extractor.Extract(data, filename)
		if err != nil {
			s.extractionFailed(w, r, err)
			return
		}

		logger.Info("file extracted",
			zap.String("filename", filename),
			zap.Int("bytes", len(data)),
			zap.Int("text_length", len([]rune(text))))
		s.jsonResponse(w, http.StatusOK, types.UploadResponse{Text: text, Filename: filename})
		return
	}
}

func (s *Server) extractionFailed(w http.ResponseWriter, r *http.Request, err error) {
	pErr := pipeline.Classify(err)

	var filename string
	var extErr *extraction.Error
	if errors.As(err, &extErr) {
		filename = extErr.Filename
	}

	logging.FromContext(r.Context(), s.logger).Warn("extraction failed",
		zap.String("filename", filename),
		zap.Int("status", pErr.Status),
		zap.Error(err))
	s.uploadError(w, pErr.Status, pErr.Message, filename, pErr)
}

func (s *Server) uploadError(w http.ResponseWriter, status int, message, filename string, err error) {
	s.jsonResponse(w, status, types.UploadResponse{
		Error:    message,
		Filename: filename,
		Details:  s.details(err),
	})
}

// handleTestPrompts runs the built-in sample letter through both modes.
// It is only routed when diagnostics are enabled.
func (s *Server) handleTestPrompts(w http.ResponseWriter, r *http.Request) {
	result, err := s.orchestrator.SelfTest(r.Context(), prompts.SampleLetter)
	if err != nil {
		pErr := pipeline.Classify(err)
		s.jsonResponse(w, pErr.Status, errorBody{Success: false, Error: pErr.Message, Details: s.details(pErr)})
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
