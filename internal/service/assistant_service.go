package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"studenthub-be/internal/constant"
	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/assistant"
	"studenthub-be/pkg/livequery"
	"studenthub-be/pkg/llm"
	"studenthub-be/pkg/tools"
)

type IAssistantService interface {
	Greeting() *dto.AssistantGreetingResponse
	SendChat(ctx context.Context, caller entity.Identity, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetAllSessions(ctx context.Context, caller entity.Identity) ([]*dto.ChatSessionDTO, error)
	GetChatHistory(ctx context.Context, caller entity.Identity, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, caller entity.Identity, req *dto.DeleteSessionRequest) error

	WatchSessions(ctx context.Context, caller entity.Identity) (*livequery.Subscription[*dto.ChatSessionDTO], error)
	WatchChatHistory(ctx context.Context, caller entity.Identity, sessionId uuid.UUID) (*livequery.Subscription[dto.ChatMessageDTO], error)
}

type assistantService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *assistant.Orchestrator
	bus          *livequery.Bus
	llmLogger    *log.Logger
}

// NewAssistantService wires the conversation loop: the tool registry is
// built here so every deployment exposes the same toolset.
func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	bus *livequery.Bus,
) (IAssistantService, error) {
	llmLogger := initLLMLogger()

	registry := tools.NewRegistry(llmLogger)
	if err := registry.Register(tools.NewLeaveHistoryTool(uowFactory)); err != nil {
		return nil, err
	}

	return &assistantService{
		uowFactory:   uowFactory,
		orchestrator: assistant.NewOrchestrator(llmProvider, registry, llmLogger),
		bus:          bus,
		llmLogger:    llmLogger,
	}, nil
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_assistant.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-ASSISTANT] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (s *assistantService) Greeting() *dto.AssistantGreetingResponse {
	return &dto.AssistantGreetingResponse{Greeting: constant.AssistantGreetingV1}
}

func (s *assistantService) SendChat(ctx context.Context, caller entity.Identity, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("begin transaction", err)
	}
	defer uow.Rollback()

	now := time.Now()
	sessionCreated := false

	var chatSession *entity.ChatSession
	if req.ChatSessionId == nil {
		// First message of a conversation: the session is created on the fly
		// and titled from the message itself.
		chatSession = &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    caller.UserID,
			Title:     deriveSessionTitle(req.Message),
			StartTime: now,
		}
		if err := uow.ChatSessionRepository().Create(ctx, chatSession); err != nil {
			return nil, apperrors.NewPersistenceError("create session", err)
		}
		sessionCreated = true
	} else {
		var err error
		chatSession, err = s.verifySession(ctx, uow, caller, *req.ChatSessionId)
		if err != nil {
			return nil, err
		}
	}

	history, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: chatSession.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("load history", err)
	}

	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		SenderType:    constant.ChatSenderUser,
		Content:       req.Message,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, apperrors.NewPersistenceError("save user message", err)
	}

	historyValues := make([]entity.ChatMessage, len(history))
	for i, m := range history {
		historyValues[i] = *m
	}

	reply, err := s.orchestrator.Answer(ctx, caller, historyValues, req.Message)
	if err != nil {
		// The user message is rolled back with the transaction: a failed
		// generation leaves no half-written conversation behind.
		return nil, err
	}

	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		SenderType:    constant.ChatSenderAssistant,
		Content:       reply,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, apperrors.NewPersistenceError("save assistant message", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperrors.NewPersistenceError("commit chat", err)
	}

	s.bus.Notify(livequery.TopicChatMessages)
	if sessionCreated {
		s.bus.Notify(livequery.TopicChatSessions)
	}

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Sent:             toChatMessageDTO(userMessage),
		Reply:            toChatMessageDTO(assistantMessage),
	}, nil
}

func (s *assistantService) GetAllSessions(ctx context.Context, caller entity.Identity) ([]*dto.ChatSessionDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.fetchSessions(ctx, uow, caller)
}

func (s *assistantService) GetChatHistory(ctx context.Context, caller entity.Identity, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, caller, sessionId); err != nil {
		return nil, err
	}

	messages, err := s.fetchMessages(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.GetChatHistoryResponse{
		ChatSessionId: sessionId,
		Messages:      messages,
	}, nil
}

func (s *assistantService) DeleteSession(ctx context.Context, caller entity.Identity, req *dto.DeleteSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, caller, req.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return apperrors.NewPersistenceError("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, req.ChatSessionId); err != nil {
		return apperrors.NewPersistenceError("delete messages", err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, req.ChatSessionId); err != nil {
		return apperrors.NewPersistenceError("delete session", err)
	}

	if err := uow.Commit(); err != nil {
		return apperrors.NewPersistenceError("commit delete", err)
	}

	s.bus.Notify(livequery.TopicChatSessions)
	s.bus.Notify(livequery.TopicChatMessages)
	return nil
}

// WatchSessions streams the caller's session list: a snapshot now, and a
// fresh one every time any session changes.
func (s *assistantService) WatchSessions(ctx context.Context, caller entity.Identity) (*livequery.Subscription[*dto.ChatSessionDTO], error) {
	return livequery.Subscribe(ctx, s.bus, livequery.TopicChatSessions, func(ctx context.Context) ([]*dto.ChatSessionDTO, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		return s.fetchSessions(ctx, uow, caller)
	})
}

func (s *assistantService) WatchChatHistory(ctx context.Context, caller entity.Identity, sessionId uuid.UUID) (*livequery.Subscription[dto.ChatMessageDTO], error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.verifySession(ctx, uow, caller, sessionId); err != nil {
		return nil, err
	}

	return livequery.Subscribe(ctx, s.bus, livequery.TopicChatMessages, func(ctx context.Context) ([]dto.ChatMessageDTO, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		return s.fetchMessages(ctx, uow, sessionId)
	})
}

// verifySession loads a session and proves the caller owns it. A foreign or
// missing session is reported the same way.
func (s *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, caller entity.Identity, sessionId uuid.UUID) (*entity.ChatSession, error) {
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: caller.UserID},
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("find session", err)
	}
	if chatSession == nil {
		return nil, apperrors.ErrNotFound
	}
	return chatSession, nil
}

func (s *assistantService) fetchSessions(ctx context.Context, uow unitofwork.UnitOfWork, caller entity.Identity) ([]*dto.ChatSessionDTO, error) {
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedBy{UserID: caller.UserID},
		specification.OrderBy{Field: "start_time", Desc: true},
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list sessions", err)
	}

	result := make([]*dto.ChatSessionDTO, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, &dto.ChatSessionDTO{
			Id:        session.Id,
			Title:     session.Title,
			StartTime: session.StartTime,
		})
	}
	return result, nil
}

func (s *assistantService) fetchMessages(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]dto.ChatMessageDTO, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list messages", err)
	}

	result := make([]dto.ChatMessageDTO, 0, len(messages))
	for _, m := range messages {
		result = append(result, *toChatMessageDTO(m))
	}
	return result, nil
}

func toChatMessageDTO(m *entity.ChatMessage) *dto.ChatMessageDTO {
	return &dto.ChatMessageDTO{
		Id:        m.Id,
		Role:      m.SenderType,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func deriveSessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= constant.SessionTitleMaxLen {
		return message
	}
	return string(runes[:constant.SessionTitleMaxLen]) + constant.SessionTitleSuffix
}
