// Package assistant runs the tool-aware conversation loop between a student,
// the model, and the tool registry.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"studenthub-be/internal/constant"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/pkg/llm"
	"studenthub-be/pkg/tools"
)

// Orchestrator turns a stored conversation plus a new prompt into one
// assistant reply. Tool calls are resolved server-side in a single hop: the
// model may request tools once, their results are fed back, and the next
// model turn must produce the answer.
type Orchestrator struct {
	provider llm.LLMProvider
	registry *tools.Registry
	logger   *log.Logger
}

func NewOrchestrator(provider llm.LLMProvider, registry *tools.Registry, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		registry: registry,
		logger:   logger,
	}
}

// Answer produces the assistant reply for prompt. history is the stored
// conversation, oldest first; only the most recent messages accompany the
// prompt. caller is the authenticated identity every tool executes under.
func (o *Orchestrator) Answer(ctx context.Context, caller entity.Identity, history []entity.ChatMessage, prompt string) (string, error) {
	messages := o.buildMessages(history, prompt)
	declarations := o.registry.Declarations()

	result, err := o.provider.ChatWithTools(ctx, messages, llm.WithTools(declarations))
	if err != nil {
		return "", apperrors.NewGenerationError(err)
	}

	if len(result.ToolCalls) > 0 {
		o.logger.Printf("[ASSISTANT] Model requested %d tool call(s) for user %s", len(result.ToolCalls), caller.UserID)

		// Only the first requested call is executed per turn.
		call := result.ToolCalls[0]

		messages = append(messages, llm.Message{
			Role:      constant.ChatMessageRoleAssistant,
			Content:   result.Content,
			ToolCalls: []llm.ToolCall{call},
		})
		messages = append(messages, llm.Message{
			Role:     constant.ChatMessageRoleTool,
			ToolName: call.Name,
			Content:  o.executeCall(ctx, caller, call),
		})

		// Second turn: tools stay declared so the model keeps their context,
		// but further calls are not honored.
		result, err = o.provider.ChatWithTools(ctx, messages, llm.WithTools(declarations))
		if err != nil {
			return "", apperrors.NewGenerationError(err)
		}
	}

	if result.Content == "" {
		return "", apperrors.NewGenerationError(errors.New("model produced no usable reply"))
	}
	return result.Content, nil
}

// buildMessages assembles system persona, the bounded history tail, and the
// new prompt.
func (o *Orchestrator) buildMessages(history []entity.ChatMessage, prompt string) []llm.Message {
	if len(history) > constant.MaxHistoryMessages {
		history = history[len(history)-constant.MaxHistoryMessages:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: constant.AssistantSystemPromptV1,
	})
	for _, msg := range history {
		role := constant.ChatMessageRoleUser
		if msg.SenderType == constant.ChatSenderAssistant {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: prompt,
	})
	return messages
}

// executeCall runs one tool call and serializes its result for the model.
// The registry already degrades failures to the tool's empty result.
func (o *Orchestrator) executeCall(ctx context.Context, caller entity.Identity, call llm.ToolCall) string {
	result := o.registry.Execute(ctx, caller, call)

	payload, err := json.Marshal(result)
	if err != nil {
		o.logger.Printf("[ASSISTANT] Failed to serialize result of tool '%s': %v", call.Name, err)
		return "[]"
	}
	return string(payload)
}
