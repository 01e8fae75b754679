package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/klachtbrief/internal/config"
	"github.com/jonathan/klachtbrief/internal/llm"
	"github.com/jonathan/klachtbrief/internal/logging"
	"github.com/jonathan/klachtbrief/internal/pipeline"
	"github.com/jonathan/klachtbrief/internal/prompts"
	"github.com/jonathan/klachtbrief/internal/rewriting"
	"github.com/jonathan/klachtbrief/internal/validation"
	"go.uber.org/zap"
)

// app holds the components shared by the commands.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	prompts      *prompts.Set
	validator    *validation.Validator
	builder      *prompts.Builder
	reviewer     *rewriting.Reviewer
	client       *llm.Client
	orchestrator *pipeline.Orchestrator
}

// loadConfig reads the configuration. When requireLLM is set the
// configuration must be complete enough to call the provider.
func loadConfig(requireLLM bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if requireLLM {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newApp builds the pipeline. The completion client is only created when
// withLLM is set; logs go to logOut.
func newApp(ctx context.Context, withLLM bool, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(withLLM)
	if err != nil {
		return nil, err
	}

	logger := logging.NewWithWriter(cfg.LogLevel, cfg.LogFormat, logOut)

	set, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		prompts:   set,
		validator: validation.New(cfg.Limits.MaxTextLength, cfg.Limits.MaxContextLength),
		builder:   prompts.NewBuilder(set),
		reviewer:  rewriting.NewReviewer(set),
	}

	if withLLM {
		client, err := llm.NewClient(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion client: %w", err)
		}
		a.client = client
		a.orchestrator = pipeline.New(a.validator, a.builder, client, a.reviewer, logger)
	}

	logger.Debug("configuration loaded",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("prompts_version", set.Version))
	return a, nil
}

// Close releases the completion client and flushes the logger.
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("failed to close completion client", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// userError turns a pipeline failure into the error shown on the command line.
func userError(err error) error {
	pErr := pipeline.Classify(err)
	return fmt.Errorf("%s (%s): %w", pErr.Message, pErr.Kind, err)
}
