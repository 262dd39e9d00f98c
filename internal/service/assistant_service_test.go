package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studenthub-be/internal/constant"
	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/pkg/livequery"
	"studenthub-be/pkg/llm"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	cp := *session
	r.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, session := range r.sessions {
		keep := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByID:
				if session.Id != s.ID {
					keep = false
				}
			case specification.OwnedBy:
				if session.UserId != s.UserID {
					keep = false
				}
			}
		}
		if keep {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeMessageRepo struct {
	messages []*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	cp := *message
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		keep := true
		for _, spec := range specs {
			if s, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != s.ChatSessionID {
				keep = false
			}
		}
		if keep {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// scriptedProvider answers every chat with a fixed reply, or fails.
type scriptedProvider struct {
	reply string
	err   error
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.reply, p.err
}

func (p *scriptedProvider) ChatWithTools(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.ChatResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatResult{Content: p.reply}, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.reply, p.err
}

func newAssistantServiceUnderTest(t *testing.T, provider llm.LLMProvider) (IAssistantService, *fakeUnitOfWork) {
	t.Helper()
	uow := &fakeUnitOfWork{
		leaveRepo:   newFakeLeaveRepo(),
		userRepo:    &fakeUserRepo{},
		sessionRepo: newFakeSessionRepo(),
		messageRepo: &fakeMessageRepo{},
	}
	bus := livequery.NewBus(watermill.NopLogger{})
	svc, err := NewAssistantService(&fakeUowFactory{uow: uow}, provider, bus)
	require.NoError(t, err)
	return svc, uow
}

func TestSendChatCreatesSessionOnFirstMessage(t *testing.T) {
	svc, uow := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "Hi! How can I help?"})
	caller := studentIdentity()

	res, err := svc.SendChat(context.Background(), caller, &dto.SendChatRequest{
		Message: "When are my leave days?",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.ChatSessionId)
	assert.Equal(t, "When are my leave days?", res.ChatSessionTitle)
	assert.Equal(t, constant.ChatSenderUser, res.Sent.Role)
	assert.Equal(t, constant.ChatSenderAssistant, res.Reply.Role)
	assert.Equal(t, "Hi! How can I help?", res.Reply.Content)

	session := uow.sessionRepo.sessions[res.ChatSessionId]
	require.NotNil(t, session)
	assert.Equal(t, caller.UserID, session.UserId)
	assert.Len(t, uow.messageRepo.messages, 2)
}

func TestSendChatTruncatesLongTitle(t *testing.T) {
	svc, _ := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "ok"})

	long := strings.Repeat("a", 80)
	res, err := svc.SendChat(context.Background(), studentIdentity(), &dto.SendChatRequest{Message: long})
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("a", constant.SessionTitleMaxLen)+constant.SessionTitleSuffix, res.ChatSessionTitle)
}

func TestSendChatReusesExistingSession(t *testing.T) {
	svc, uow := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "sure"})
	caller := studentIdentity()

	first, err := svc.SendChat(context.Background(), caller, &dto.SendChatRequest{Message: "hello assistant"})
	require.NoError(t, err)

	second, err := svc.SendChat(context.Background(), caller, &dto.SendChatRequest{
		ChatSessionId: &first.ChatSessionId,
		Message:       "follow-up question",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ChatSessionId, second.ChatSessionId)
	assert.Len(t, uow.sessionRepo.sessions, 1)
	assert.Len(t, uow.messageRepo.messages, 4)
}

func TestSendChatForeignSessionLooksMissing(t *testing.T) {
	svc, _ := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "ok"})
	owner := studentIdentity()
	intruder := studentIdentity()

	created, err := svc.SendChat(context.Background(), owner, &dto.SendChatRequest{Message: "private conversation"})
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), intruder, &dto.SendChatRequest{
		ChatSessionId: &created.ChatSessionId,
		Message:       "let me in",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetChatHistory(context.Background(), intruder, created.ChatSessionId)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSendChatGenerationFailureSurfaces(t *testing.T) {
	svc, _ := newAssistantServiceUnderTest(t, &scriptedProvider{err: errors.New("model offline")})

	_, err := svc.SendChat(context.Background(), studentIdentity(), &dto.SendChatRequest{Message: "are you there?"})

	var genErr *apperrors.GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestGetChatHistoryReturnsConversationInOrder(t *testing.T) {
	svc, _ := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "answer"})
	caller := studentIdentity()

	res, err := svc.SendChat(context.Background(), caller, &dto.SendChatRequest{Message: "question one"})
	require.NoError(t, err)

	history, err := svc.GetChatHistory(context.Background(), caller, res.ChatSessionId)
	require.NoError(t, err)

	require.Len(t, history.Messages, 2)
	assert.Equal(t, constant.ChatSenderUser, history.Messages[0].Role)
	assert.Equal(t, constant.ChatSenderAssistant, history.Messages[1].Role)
}

func TestDeleteSessionRemovesSessionAndMessages(t *testing.T) {
	svc, uow := newAssistantServiceUnderTest(t, &scriptedProvider{reply: "bye"})
	caller := studentIdentity()

	res, err := svc.SendChat(context.Background(), caller, &dto.SendChatRequest{Message: "temporary chat"})
	require.NoError(t, err)

	err = svc.DeleteSession(context.Background(), caller, &dto.DeleteSessionRequest{ChatSessionId: res.ChatSessionId})
	require.NoError(t, err)

	assert.Empty(t, uow.sessionRepo.sessions)
	assert.Empty(t, uow.messageRepo.messages)

	_, err = svc.GetChatHistory(context.Background(), caller, res.ChatSessionId)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
