// Package pipeline composes the request validator, the prompt builder and
// the completion client, and maps every failure onto one error taxonomy.
package pipeline

import (
	"context"
	"time"

	"github.com/jonathan/klachtbrief/internal/logging"
	"github.com/jonathan/klachtbrief/internal/prompts"
	"github.com/jonathan/klachtbrief/internal/rewriting"
	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/jonathan/klachtbrief/internal/validation"
	"go.uber.org/zap"
)

// Completer sends a prompt pair to the language model.
type Completer interface {
	Complete(ctx context.Context, prompt types.PromptPair) (string, error)
}

// Orchestrator runs letters through the pipeline. It holds only read-only
// collaborators and is safe for concurrent use.
type Orchestrator struct {
	validator *validation.Validator
	builder   *prompts.Builder
	completer Completer
	reviewer  *rewriting.Reviewer
	logger    *zap.Logger
}

// New returns an Orchestrator. reviewer may be nil to skip output review.
func New(v *validation.Validator, b *prompts.Builder, c Completer, r *rewriting.Reviewer, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		validator: v,
		builder:   b,
		completer: c,
		reviewer:  r,
		logger:    logger,
	}
}

// Handle validates a raw JSON body and runs it. Every returned error is a
// *Error.
func (o *Orchestrator) Handle(ctx context.Context, body []byte) (string, error) {
	req, err := o.validator.Validate(body)
	if err != nil {
		return "", o.fail(ctx, err)
	}
	return o.Run(ctx, *req)
}

// Process validates an already decoded request and runs it.
func (o *Orchestrator) Process(ctx context.Context, in types.ProcessTextRequest) (string, error) {
	req, err := o.validator.ValidateRequest(in)
	if err != nil {
		return "", o.fail(ctx, err)
	}
	return o.Run(ctx, *req)
}

// Run builds the prompt for a validated request and completes it.
func (o *Orchestrator) Run(ctx context.Context, req types.LetterRequest) (string, error) {
	logger := logging.FromContext(ctx, o.logger)
	logger.Info("processing letter",
		zap.Stringer("mode", req.Mode),
		zap.Int("text_length", len([]rune(req.Text))),
		zap.Bool("has_context", req.AdditionalContext != ""))

	start := time.Now()
	text, err := o.completer.Complete(ctx, o.builder.Build(req))
	if err != nil {
		return "", o.fail(ctx, err)
	}

	o.review(logger, req.Mode, text)
	logger.Info("letter processed",
		zap.Stringer("mode", req.Mode),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

// Prompt returns the prompt pair req would be sent with.
func (o *Orchestrator) Prompt(req types.LetterRequest) types.PromptPair {
	return o.builder.Build(req)
}

func (o *Orchestrator) review(logger *zap.Logger, mode types.Mode, text string) {
	if o.reviewer == nil {
		return
	}
	result := o.reviewer.Review(text)
	if result.Placeholders > 0 {
		logger.Info("letter contains placeholders", zap.Int("count", result.Placeholders))
	}
	if result.OK() {
		return
	}
	logger.Warn("generated letter breaks house rules",
		zap.Stringer("mode", mode),
		zap.Strings("banned_phrases", result.BannedPhrases),
		zap.Bool("has_closing", result.HasClosing))
}

func (o *Orchestrator) fail(ctx context.Context, err error) error {
	pErr := Classify(err)
	logger := logging.FromContext(ctx, o.logger)
	if pErr.Kind == InvalidInput {
		logger.Info("request rejected", zap.Stringer("kind", pErr.Kind), zap.String("reason", pErr.Message))
	} else {
		logger.Error("pipeline failed", zap.Stringer("kind", pErr.Kind), zap.Int("status", pErr.Status), zap.Error(err))
	}
	return pErr
}
