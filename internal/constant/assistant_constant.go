package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
	ChatMessageRoleTool      = "tool"

	// SenderType values persisted on chat messages.
	ChatSenderUser      = "user"
	ChatSenderAssistant = "assistant"

	// MaxHistoryMessages bounds how many stored messages accompany a new
	// prompt to the model. Older messages stay persisted but are not sent.
	MaxHistoryMessages = 5

	// SessionTitleMaxLen is the cut-off when deriving a session title from
	// the first user message.
	SessionTitleMaxLen = 40
	SessionTitleSuffix = "..."

	AssistantSystemPromptV1 = `You are StudentHub Assistant, the helpful virtual assistant of the StudentHub student services portal.

SCOPE:
- Answer questions about the student's own leave applications: their status, dates, types, and history.
- Explain how leave applications work: a submitted application starts as "pending" and an administrator later approves or rejects it.
- Help with general questions about using the portal.

RULES:
- When the student asks anything about their leave applications, call the getStudentLeaveHistory tool instead of guessing.
- Only discuss the calling student's own records. Never speculate about other students.
- If the tool returns no records, say the student has no leave applications on file.
- Be concise and friendly: 2-4 sentences unless the student asks for detail.
- Do not invent dates, statuses, or records that the tool did not return.`

	AssistantGreetingV1 = "Hi! I'm the StudentHub Assistant. I can check your leave applications, explain their status, or help you find your way around the portal. What can I do for you?"

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"
)
