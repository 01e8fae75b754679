// Package llm is the completion client: it sends a prompt pair to the
// configured language-model provider, retries transient failures and
// classifies the ones that are terminal.
package llm

import (
	"time"

	"github.com/jonathan/klachtbrief/internal/config"
)

// Options are the generation parameters sent with each completion.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// OptionsFromConfig extracts the generation parameters from cfg.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// WithMaxTokens returns a copy of o using maxTokens.
func (o Options) WithMaxTokens(maxTokens int) Options {
	o.MaxTokens = maxTokens
	return o
}

// Policy holds the timeout and retry settings of a Client.
type Policy struct {
	Timeout     time.Duration // per attempt
	MaxRetries  int           // extra attempts after the first
	BackoffBase time.Duration
}

// PolicyFromConfig extracts the timeout and retry settings from cfg.
func PolicyFromConfig(cfg config.LLMConfig) Policy {
	return Policy{
		Timeout:     cfg.Timeout,
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.BackoffBase,
	}
}
