package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
)

type ChatRepository interface {
	Save(ctx context.Context, userEmail string, session *entity.ChatSession) error
	FindOne(ctx context.Context, userEmail, sessionId string) (*entity.ChatSession, error)
	FetchAll(ctx context.Context, userEmail string) ([]*entity.ChatSession, error)
	MoveToTrash(ctx context.Context, userEmail, sessionId string) error
	Restore(ctx context.Context, userEmail, sessionId string) error
	SetPinned(ctx context.Context, userEmail, sessionId string, pinned bool) error
	PermanentlyDelete(ctx context.Context, userEmail, sessionId string) error
	EmptyTrash(ctx context.Context, userEmail string) (int, error)
	SweepExpiredTrash(ctx context.Context, userEmail string) (int, error)
	// Subscribe delivers the current snapshot immediately and again after
	// every change, newest session first. The returned function cancels the
	// subscription.
	Subscribe(ctx context.Context, userEmail string, onChange func([]*entity.ChatSession)) (func(), error)
	DeleteAllByUser(ctx context.Context, userEmail string) error
}
