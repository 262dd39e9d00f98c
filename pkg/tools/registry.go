// Package tools holds the assistant's callable tool registry. Tools execute
// with the authenticated caller's identity supplied by the server; identifiers
// arriving in model-generated arguments are never trusted.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"studenthub-be/internal/entity"
	"studenthub-be/pkg/llm"
)

// HandlerFunc executes a tool call on behalf of caller. args is the raw
// model-generated argument object.
type HandlerFunc func(ctx context.Context, caller entity.Identity, args json.RawMessage) (any, error)

// Definition pairs a tool declaration with its executor and the degraded
// result to substitute when execution fails.
type Definition struct {
	Tool        llm.Tool
	EmptyResult any
	Handler     HandlerFunc
}

// Registry is the set of tools exposed to the model for one deployment.
type Registry struct {
	defs   map[string]Definition
	names  []string
	logger *log.Logger
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		defs:   make(map[string]Definition),
		logger: logger,
	}
}

// Register adds a tool definition. Registering the same name twice is a
// wiring mistake and fails loudly.
func (r *Registry) Register(def Definition) error {
	if def.Tool.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool '%s' has no handler", def.Tool.Name)
	}
	if _, exists := r.defs[def.Tool.Name]; exists {
		return fmt.Errorf("tool '%s' already registered", def.Tool.Name)
	}
	r.defs[def.Tool.Name] = def
	r.names = append(r.names, def.Tool.Name)
	return nil
}

// Declarations returns the tool declarations to pass to the model, in
// registration order.
func (r *Registry) Declarations() []llm.Tool {
	decls := make([]llm.Tool, 0, len(r.names))
	for _, name := range r.names {
		decls = append(decls, r.defs[name].Tool)
	}
	return decls
}

// Execute runs one model-requested tool call. Failures never surface to the
// conversation: an unknown tool or a failed handler yields the tool's empty
// result so the model can still answer, and the failure is logged.
func (r *Registry) Execute(ctx context.Context, caller entity.Identity, call llm.ToolCall) any {
	def, ok := r.defs[call.Name]
	if !ok {
		r.logger.Printf("[TOOLS] Model requested unknown tool '%s', returning empty result", call.Name)
		return []any{}
	}

	result, err := def.Handler(ctx, caller, call.Arguments)
	if err != nil {
		r.logger.Printf("[TOOLS] Tool '%s' failed for user %s: %v", call.Name, caller.UserID, err)
		return def.EmptyResult
	}
	return result
}
