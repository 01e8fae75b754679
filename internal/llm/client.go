package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/klachtbrief/internal/config"
	"github.com/jonathan/klachtbrief/internal/retry"
	"github.com/jonathan/klachtbrief/internal/types"
	"go.uber.org/zap"
)

// ProbePrompt is the connectivity check sent at startup.
const ProbePrompt = "Respond with 'OK' if you can read this."

// Provider performs one completion attempt against a specific backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs
	Name() string
	// Complete sends prompt once and returns the generated text
	Complete(ctx context.Context, prompt types.PromptPair, opts Options) (string, error)
	// Close releases any resources held by the provider
	Close() error
}

// Client wraps a Provider with a per-attempt timeout and a bounded retry
// policy. It keeps no per-call state, so one Client serves all requests.
type Client struct {
	provider Provider
	opts     Options
	policy   Policy
	logger   *zap.Logger
}

// NewClient creates the provider selected by cfg and wraps it in a Client.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*Client, error) {
	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider, err = NewOpenAIClient(cfg.APIKey, cfg.BaseURL, nil)
	case config.ProviderGemini:
		provider, err = NewGeminiClient(ctx, cfg.APIKey, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return New(provider, OptionsFromConfig(cfg), PolicyFromConfig(cfg), logger), nil
}

// New wraps provider in a Client.
func New(provider Provider, opts Options, policy Policy, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		provider: provider,
		opts:     opts,
		policy:   policy,
		logger:   logger.With(zap.String("provider", provider.Name())),
	}
}

// Options returns the default generation parameters of c.
func (c *Client) Options() Options {
	return c.opts
}

// ProviderName returns the name of the wrapped provider.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Complete runs prompt with the client's default options.
func (c *Client) Complete(ctx context.Context, prompt types.PromptPair) (string, error) {
	return c.CompleteWith(ctx, prompt, c.opts)
}

// CompleteWith runs prompt with opts. Timeouts and rate limits are retried
// with exponential backoff; every other failure is returned at once. After
// the last attempt the last observed error is returned.
func (c *Client) CompleteWith(ctx context.Context, prompt types.PromptPair, opts Options) (string, error) {
	policy := retry.Policy{
		MaxAttempts: c.policy.MaxRetries + 1,
		Retryable:   IsRetryable,
		Backoff:     retry.Exponential(c.policy.BackoffBase),
		OnRetry: func(attempt int, wait time.Duration, err error) {
			c.logger.Warn("retrying completion",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.policy.MaxRetries),
				zap.Duration("backoff", wait),
				zap.Error(err))
		},
	}

	start := time.Now()
	text, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
		return c.attempt(ctx, prompt, opts)
	})
	if err != nil {
		c.logger.Error("completion failed",
			zap.String("model", opts.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	c.logger.Info("completion succeeded",
		zap.String("model", opts.Model),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

func (c *Client) attempt(ctx context.Context, prompt types.PromptPair, opts Options) (string, error) {
	if c.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()
	}

	text, err := c.provider.Complete(ctx, prompt, opts)
	if err == nil {
		return text, nil
	}

	// Some transports surface an expired deadline as a generic error.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !IsRetryable(err) {
		return "", &TimeoutError{Message: fmt.Sprintf("no response within %s", c.policy.Timeout), Cause: err}
	}
	return "", err
}

// Probe sends a single short completion to verify that the provider is
// reachable and accepts the credential. It does not retry.
func (c *Client) Probe(ctx context.Context) (string, error) {
	if c.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()
	}
	return c.provider.Complete(ctx, types.PromptPair{UserInstruction: ProbePrompt}, c.opts.WithMaxTokens(5))
}

// Close releases the provider's resources.
func (c *Client) Close() error {
	return c.provider.Close()
}
