package repositories

import "context"

// ReplyGenerator abstracts any chat/LLM provider used to produce
// the assistant's next utterance.
type ReplyGenerator interface {
	// GenerateReply produces a reply to the caller's utterance given the
	// conversation so far
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}

// ReplyRequest carries the caller utterance and conversation context
type ReplyRequest struct {
	Utterance string        `json:"utterance"`
	Language  string        `json:"language"`
	History   []ChatMessage `json:"history"`
}

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the type of message sender
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
	SystemRole    Role = "system"
)
