package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	// ChatSessionId is optional: the first message of a conversation omits it
	// and a session is created on the fly.
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
	Message       string     `json:"message" validate:"required,min=1,max=4000"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID       `json:"chat_session_id"`
	ChatSessionTitle string          `json:"title"`
	Sent             *ChatMessageDTO `json:"sent"`
	Reply            *ChatMessageDTO `json:"reply"`
}

type ChatSessionDTO struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

type GetChatHistoryResponse struct {
	ChatSessionId uuid.UUID        `json:"chat_session_id"`
	Messages      []ChatMessageDTO `json:"messages"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

type AssistantGreetingResponse struct {
	Greeting string `json:"greeting"`
}
