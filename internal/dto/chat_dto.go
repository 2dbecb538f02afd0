package dto

type ChatMessageDTO struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type AttachmentDTO struct {
	Type     string `json:"type" validate:"required,oneof=image file"`
	MimeType string `json:"mimeType" validate:"required"`
	Data     string `json:"data" validate:"required"`
	Name     string `json:"name,omitempty"`
}

type ChatSessionResponse struct {
	Id        string           `json:"id"`
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	Messages  []ChatMessageDTO `json:"messages"`
	IsPinned  bool             `json:"isPinned"`
	DeletedAt *string          `json:"deletedAt,omitempty"`
}

type CreateSessionResponse struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type SendMessageRequest struct {
	SessionId   string          `json:"session_id,omitempty"`
	Text        string          `json:"text"`
	Attachments []AttachmentDTO `json:"attachments,omitempty" validate:"max=8,dive"`
}

type SendMessageResponse struct {
	SessionId string          `json:"session_id"`
	Title     string          `json:"title"`
	Sent      *ChatMessageDTO `json:"sent"`
	Reply     *ChatMessageDTO `json:"reply"`
}

type SessionActionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

type PinSessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Pinned    bool   `json:"pinned"`
}

// Destructive operations require an explicit confirmation flag; the handler
// rejects requests without it before touching the repository.
type PermanentDeleteRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Confirm   bool   `json:"confirm" validate:"required"`
}

type EmptyTrashRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

type EmptyTrashResponse struct {
	Deleted int `json:"deleted"`
}
