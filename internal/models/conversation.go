package models

import "time"

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is a single entry of an editing session's chat history
type ConversationMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSnapshot is the client view of an editor session
type SessionSnapshot struct {
	ID          string                `json:"id"`
	ThreadID    string                `json:"threadId,omitempty"`
	Messages    []ConversationMessage `json:"messages"`
	Busy        bool                  `json:"busy"`
	HasDocument bool                  `json:"hasDocument"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// SendMessageRequest is the body of a chat turn
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ExtractRequest is the body of the content extraction endpoint
type ExtractRequest struct {
	Message string `json:"message"`
}

// ExtractResponse carries the document and the chat-safe text of a reply
type ExtractResponse struct {
	HTML        string `json:"html"`
	ChatMessage string `json:"chatMessage"`
}

// ExportRequest is the body of the stateless export endpoint
type ExportRequest struct {
	HTML     string `json:"html"`
	Filename string `json:"filename,omitempty"`
	Layout   string `json:"layout,omitempty"`
}

// ImageUploadResponse describes a stored background image
type ImageUploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
