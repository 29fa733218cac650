package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// StreamHandler receives each text fragment as the provider produces it.
// Returning an error stops the stream; whatever accumulated so far is still
// returned to the caller.
type StreamHandler func(fragment string) error

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	Reasoning   bool   // Reasoning models reject a temperature parameter
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithReasoning(reasoning bool) Option {
	return func(o *Options) {
		o.Reasoning = reasoning
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// ChatStream sends a chat history to the model and relays each produced
	// fragment to the handler as it arrives. It returns the accumulated text,
	// which is valid (possibly partial) even when err is non-nil.
	ChatStream(ctx context.Context, history []Message, handler StreamHandler, options ...Option) (string, error)

	// Chat sends a chat history to the model and returns the full response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
}

// BuildOptions folds functional options over provider defaults.
func BuildOptions(opts []Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
