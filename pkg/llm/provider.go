package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall
	// ToolName is set on "tool" role messages carrying an execution result.
	ToolName string
}

// Tool describes a function the model may call, in the common
// JSON-schema-parameters shape used by Ollama and OpenAI-compatible APIs.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema object for the arguments
}

// ToolCall is a model request to execute one declared tool.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// ChatResult is the outcome of a tool-aware chat turn: either plain content,
// or one or more tool calls to satisfy before asking again.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	Tools       []Tool
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithTools(tools []Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithTools sends a chat history plus tool declarations and returns
	// either content or tool calls. Providers that receive no tools behave
	// like Chat.
	ChatWithTools(ctx context.Context, history []Message, options ...Option) (*ChatResult, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
