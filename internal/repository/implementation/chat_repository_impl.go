package implementation

import (
	"context"
	"errors"
	"time"

	"ai-assistant-be/internal/docstore"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/mapper"
	"ai-assistant-be/internal/repository/contract"
)

// TrashChunkSize keeps bulk deletes comfortably under the store's batch
// ceiling of 500 operations.
const TrashChunkSize = 450

type ChatRepositoryImpl struct {
	store  docstore.Store
	mapper *mapper.ChatMapper
}

func NewChatRepository(store docstore.Store) contract.ChatRepository {
	return &ChatRepositoryImpl{
		store:  store,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) chatsCollection(userEmail string) string {
	return "users/" + userEmail + "/chats"
}

func (r *ChatRepositoryImpl) chatPath(userEmail, sessionId string) string {
	return r.chatsCollection(userEmail) + "/" + sessionId
}

func (r *ChatRepositoryImpl) Save(ctx context.Context, userEmail string, session *entity.ChatSession) error {
	doc, err := r.mapper.SessionToDoc(session)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, r.chatPath(userEmail, session.Id), doc, true)
}

func (r *ChatRepositoryImpl) FindOne(ctx context.Context, userEmail, sessionId string) (*entity.ChatSession, error) {
	data, err := r.store.Get(ctx, r.chatPath(userEmail, sessionId))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DocToSession(sessionId, data)
}

func (r *ChatRepositoryImpl) FetchAll(ctx context.Context, userEmail string) ([]*entity.ChatSession, error) {
	docs, err := r.store.Query(ctx, docstore.Query{
		Collection: r.chatsCollection(userEmail),
		OrderBy:    &docstore.OrderBy{Field: "date", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	return r.toSessions(docs), nil
}

func (r *ChatRepositoryImpl) MoveToTrash(ctx context.Context, userEmail, sessionId string) error {
	return r.store.Set(ctx, r.chatPath(userEmail, sessionId), map[string]interface{}{
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
	}, true)
}

func (r *ChatRepositoryImpl) Restore(ctx context.Context, userEmail, sessionId string) error {
	return r.store.Set(ctx, r.chatPath(userEmail, sessionId), map[string]interface{}{
		"deletedAt": nil,
	}, true)
}

func (r *ChatRepositoryImpl) SetPinned(ctx context.Context, userEmail, sessionId string, pinned bool) error {
	return r.store.Set(ctx, r.chatPath(userEmail, sessionId), map[string]interface{}{
		"isPinned": pinned,
	}, true)
}

func (r *ChatRepositoryImpl) PermanentlyDelete(ctx context.Context, userEmail, sessionId string) error {
	return r.store.Delete(ctx, r.chatPath(userEmail, sessionId))
}

func (r *ChatRepositoryImpl) EmptyTrash(ctx context.Context, userEmail string) (int, error) {
	sessions, err := r.FetchAll(ctx, userEmail)
	if err != nil {
		return 0, err
	}

	var trashed []string
	for _, s := range sessions {
		if s.IsTrashed() {
			trashed = append(trashed, s.Id)
		}
	}
	return r.deleteChunked(ctx, userEmail, trashed)
}

func (r *ChatRepositoryImpl) SweepExpiredTrash(ctx context.Context, userEmail string) (int, error) {
	sessions, err := r.FetchAll(ctx, userEmail)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-entity.TrashRetention)
	var expired []string
	for _, s := range sessions {
		if !s.IsTrashed() {
			continue
		}
		deletedAt, err := time.Parse(time.RFC3339, *s.DeletedAt)
		if err != nil {
			continue
		}
		if deletedAt.Before(cutoff) {
			expired = append(expired, s.Id)
		}
	}
	return r.deleteChunked(ctx, userEmail, expired)
}

func (r *ChatRepositoryImpl) DeleteAllByUser(ctx context.Context, userEmail string) error {
	sessions, err := r.FetchAll(ctx, userEmail)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.Id)
	}
	_, err = r.deleteChunked(ctx, userEmail, ids)
	return err
}

// deleteChunked removes the given sessions in independent batch commits of
// at most TrashChunkSize deletes each. A later chunk failing leaves earlier
// chunks applied.
func (r *ChatRepositoryImpl) deleteChunked(ctx context.Context, userEmail string, ids []string) (int, error) {
	deleted := 0
	for start := 0; start < len(ids); start += TrashChunkSize {
		end := start + TrashChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		batch := r.store.Batch()
		for _, id := range ids[start:end] {
			batch.Delete(r.chatPath(userEmail, id))
		}
		if err := batch.Commit(ctx); err != nil {
			return deleted, err
		}
		deleted += end - start
	}
	return deleted, nil
}

func (r *ChatRepositoryImpl) Subscribe(ctx context.Context, userEmail string, onChange func([]*entity.ChatSession)) (func(), error) {
	unsubscribe, err := r.store.Subscribe(ctx, docstore.Query{
		Collection: r.chatsCollection(userEmail),
		OrderBy:    &docstore.OrderBy{Field: "date", Desc: true},
	}, func(docs []docstore.Document) {
		onChange(r.toSessions(docs))
	}, func(error) {
		// A failed snapshot surfaces as an empty list so consumers always
		// get a delivery.
		onChange([]*entity.ChatSession{})
	})
	if err != nil {
		onChange([]*entity.ChatSession{})
		return func() {}, nil
	}
	return unsubscribe, nil
}

func (r *ChatRepositoryImpl) toSessions(docs []docstore.Document) []*entity.ChatSession {
	sessions := make([]*entity.ChatSession, 0, len(docs))
	for _, doc := range docs {
		s, err := r.mapper.DocToSession(doc.ID, doc.Data)
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}
