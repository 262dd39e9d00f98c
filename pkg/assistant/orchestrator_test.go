package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"studenthub-be/internal/constant"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/pkg/llm"
	"studenthub-be/pkg/tools"
)

// fakeProvider replays scripted ChatResults and records every call.
type fakeProvider struct {
	results []*llm.ChatResult
	errs    []error
	calls   [][]llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	res, err := f.ChatWithTools(ctx, history, options...)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

func (f *fakeProvider) ChatWithTools(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.ChatResult, error) {
	turn := len(f.calls)
	f.calls = append(f.calls, history)
	if turn < len(f.errs) && f.errs[turn] != nil {
		return nil, f.errs[turn]
	}
	if turn < len(f.results) {
		return f.results[turn], nil
	}
	return &llm.ChatResult{Content: "fallthrough"}, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: constant.ChatMessageRoleUser, Content: prompt}}, options...)
}

func newTestOrchestrator(provider llm.LLMProvider, defs ...tools.Definition) *Orchestrator {
	logger := log.New(io.Discard, "", 0)
	registry := tools.NewRegistry(logger)
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			panic(err)
		}
	}
	return NewOrchestrator(provider, registry, logger)
}

func historyOf(contents ...string) []entity.ChatMessage {
	msgs := make([]entity.ChatMessage, 0, len(contents))
	for i, c := range contents {
		sender := constant.ChatSenderUser
		if i%2 == 1 {
			sender = constant.ChatSenderAssistant
		}
		msgs = append(msgs, entity.ChatMessage{Content: c, SenderType: sender})
	}
	return msgs
}

func TestAnswerPlainReply(t *testing.T) {
	provider := &fakeProvider{results: []*llm.ChatResult{{Content: "Hello there"}}}
	o := newTestOrchestrator(provider)

	reply, err := o.Answer(context.Background(), entity.Identity{}, nil, "hi")
	assert.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Len(t, provider.calls, 1, "no tool calls means a single model turn")

	// System persona first, prompt last.
	first := provider.calls[0]
	assert.Equal(t, constant.ChatMessageRoleSystem, first[0].Role)
	assert.Equal(t, "hi", first[len(first)-1].Content)
}

func TestAnswerTruncatesHistory(t *testing.T) {
	provider := &fakeProvider{results: []*llm.ChatResult{{Content: "ok"}}}
	o := newTestOrchestrator(provider)

	history := historyOf("m1", "m2", "m3", "m4", "m5", "m6", "m7")
	_, err := o.Answer(context.Background(), entity.Identity{}, history, "latest")
	assert.NoError(t, err)

	// system + MaxHistoryMessages + prompt
	sent := provider.calls[0]
	assert.Len(t, sent, constant.MaxHistoryMessages+2)
	assert.Equal(t, "m3", sent[1].Content, "oldest surviving message is the tail of history")
	assert.Equal(t, "m7", sent[constant.MaxHistoryMessages].Content)
}

func TestAnswerResolvesToolCallWithCallerIdentity(t *testing.T) {
	caller := entity.Identity{UserID: uuid.New(), Role: entity.UserRoleStudent}

	var gotCaller entity.Identity
	def := tools.Definition{
		Tool:        llm.Tool{Name: "lookup", Description: "test lookup"},
		EmptyResult: []string{},
		Handler: func(ctx context.Context, c entity.Identity, args json.RawMessage) (any, error) {
			gotCaller = c
			return []string{"row"}, nil
		},
	}

	provider := &fakeProvider{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{Name: "lookup", Arguments: json.RawMessage(`{}`)}}},
		{Content: "You have one row"},
	}}
	o := newTestOrchestrator(provider, def)

	reply, err := o.Answer(context.Background(), caller, nil, "what do I have?")
	assert.NoError(t, err)
	assert.Equal(t, "You have one row", reply)
	assert.Equal(t, caller, gotCaller)

	// Second turn carries the tool result message.
	assert.Len(t, provider.calls, 2)
	second := provider.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, constant.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "lookup", last.ToolName)
	assert.JSONEq(t, `["row"]`, last.Content)
}

func TestAnswerSingleToolHop(t *testing.T) {
	def := tools.Definition{
		Tool:        llm.Tool{Name: "lookup"},
		EmptyResult: []string{},
		Handler: func(ctx context.Context, c entity.Identity, args json.RawMessage) (any, error) {
			return []string{}, nil
		},
	}

	// Model asks for tools on both turns; the second request is not honored
	// but its content still counts as the reply.
	provider := &fakeProvider{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{Name: "lookup"}}},
		{Content: "final answer", ToolCalls: []llm.ToolCall{{Name: "lookup"}}},
	}}
	o := newTestOrchestrator(provider, def)

	reply, err := o.Answer(context.Background(), entity.Identity{}, nil, "q")
	assert.NoError(t, err)
	assert.Equal(t, "final answer", reply)
	assert.Len(t, provider.calls, 2, "tool resolution happens at most once per prompt")
}

func TestAnswerExecutesOnlyFirstRequestedCall(t *testing.T) {
	executed := []string{}
	handlerFor := func(name string) tools.HandlerFunc {
		return func(ctx context.Context, c entity.Identity, args json.RawMessage) (any, error) {
			executed = append(executed, name)
			return []string{}, nil
		}
	}
	first := tools.Definition{
		Tool:        llm.Tool{Name: "first"},
		EmptyResult: []string{},
		Handler:     handlerFor("first"),
	}
	second := tools.Definition{
		Tool:        llm.Tool{Name: "second"},
		EmptyResult: []string{},
		Handler:     handlerFor("second"),
	}

	provider := &fakeProvider{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{Name: "first"}, {Name: "second"}}},
		{Content: "done"},
	}}
	o := newTestOrchestrator(provider, first, second)

	reply, err := o.Answer(context.Background(), entity.Identity{}, nil, "q")
	assert.NoError(t, err)
	assert.Equal(t, "done", reply)
	assert.Equal(t, []string{"first"}, executed)

	// The transcript fed back only carries the executed call.
	secondTurn := provider.calls[1]
	assistantMsg := secondTurn[len(secondTurn)-2]
	assert.Len(t, assistantMsg.ToolCalls, 1)
	assert.Equal(t, "first", assistantMsg.ToolCalls[0].Name)
}

func TestAnswerEmptyReplyIsGenerationError(t *testing.T) {
	provider := &fakeProvider{results: []*llm.ChatResult{{Content: ""}}}
	o := newTestOrchestrator(provider)

	_, err := o.Answer(context.Background(), entity.Identity{}, nil, "q")
	var genErr *apperrors.GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestAnswerProviderFailureIsGenerationError(t *testing.T) {
	provider := &fakeProvider{errs: []error{errors.New("connection refused")}}
	o := newTestOrchestrator(provider)

	_, err := o.Answer(context.Background(), entity.Identity{}, nil, "q")
	var genErr *apperrors.GenerationError
	assert.ErrorAs(t, err, &genErr)
}
