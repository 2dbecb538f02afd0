package entity

import "time"

// ChatSession is one conversation document. It lives at
// users/{email}/chats/{id} in the document store; the id is a unix-millis
// string so lexical ordering roughly follows creation order per device.
type ChatSession struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Messages  []Message `json:"messages"`
	IsPinned  bool      `json:"isPinned,omitempty"`
	DeletedAt *string   `json:"deletedAt,omitempty"`
}

// Message is positional within its session; it carries no id of its own.
// Role alternation is NOT guaranteed: an error retry can leave two user
// messages back to back, and consumers must not assume strict turn-taking.
type Message struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// PlaceCard is the structured block embedded in a model message between the
// sentinel tokens. It is never persisted on its own.
type PlaceCard struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Uri         string   `json:"uri"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

// Attachment is an inline binary part sent along with a user message.
type Attachment struct {
	Kind     string `json:"type"` // "image" | "file"
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64, optionally a full data URI
	Name     string `json:"name,omitempty"`
}

// TrashRetention is how long a soft-deleted session survives before the
// sweep may purge it permanently.
const TrashRetention = 30 * 24 * time.Hour

// IsTrashed reports whether the session is soft-deleted.
func (s *ChatSession) IsTrashed() bool {
	return s.DeletedAt != nil && *s.DeletedAt != ""
}
