package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// changesTopic carries the collection path of every committed mutation.
const changesTopic = "DOCSTORE_CHANGED"

// GormStore implements Store on a generic JSONB document table. Change
// notification runs over an in-process watermill bus: every mutation
// publishes its collection, and subscribers re-run their query to deliver a
// fresh full snapshot.
type GormStore struct {
	db     *gorm.DB
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func NewGormStore(db *gorm.DB, pubSub *gochannel.GoChannel, log logger.ILogger) *GormStore {
	return &GormStore{
		db:     db,
		pubSub: pubSub,
		log:    log,
	}
}

func (s *GormStore) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	collection, id, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	var m model.Document
	err = s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return decodeData(m.Data)
}

func (s *GormStore) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setInTx(tx, collection, id, data, merge)
	})
	if err != nil {
		return err
	}

	s.notify(collection)
	return nil
}

func (s *GormStore) Delete(ctx context.Context, path string) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&model.Document{}).Error
	if err != nil {
		return err
	}

	s.notify(collection)
	return nil
}

func (s *GormStore) Query(ctx context.Context, q Query) ([]Document, error) {
	db := s.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("collection = ?", q.Collection)

	for _, w := range q.Wheres {
		if w.Op != "" && w.Op != "==" {
			return nil, fmt.Errorf("unsupported where op %q", w.Op)
		}
		db = db.Where(fmt.Sprintf("data->>'%s' = ?", w.Field), fmt.Sprintf("%v", w.Value))
	}

	if q.OrderBy != nil {
		direction := "ASC"
		if q.OrderBy.Desc {
			direction = "DESC"
		}
		db = db.Order(fmt.Sprintf("data->>'%s' %s", q.OrderBy.Field, direction))
	}

	var rows []*model.Document
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		data, err := decodeData(row.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: row.DocId, Data: data})
	}
	return docs, nil
}

func (s *GormStore) Subscribe(ctx context.Context, q Query, onData func([]Document), onError func(error)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := s.pubSub.Subscribe(subCtx, changesTopic)
	if err != nil {
		cancel()
		return nil, err
	}

	// Initial snapshot before any change arrives.
	docs, err := s.Query(subCtx, q)
	if err != nil {
		onError(err)
	} else {
		onData(docs)
	}

	go func() {
		for msg := range messages {
			changed := string(msg.Payload)
			msg.Ack()
			if changed != q.Collection {
				continue
			}
			docs, err := s.Query(subCtx, q)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				onError(err)
				continue
			}
			onData(docs)
		}
	}()

	return cancel, nil
}

func (s *GormStore) Batch() WriteBatch {
	return &gormBatch{store: s}
}

func (s *GormStore) notify(collection string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(collection))
	if err := s.pubSub.Publish(changesTopic, msg); err != nil {
		s.log.Warn("DocStore", "Failed to publish change event", map[string]interface{}{
			"collection": collection, "error": err.Error(),
		})
	}
}

type batchOp struct {
	path   string
	data   map[string]interface{}
	merge  bool
	delete bool
}

type gormBatch struct {
	store *GormStore
	ops   []batchOp
}

func (b *gormBatch) Set(path string, data map[string]interface{}, merge bool) {
	b.ops = append(b.ops, batchOp{path: path, data: data, merge: merge})
}

func (b *gormBatch) Delete(path string) {
	b.ops = append(b.ops, batchOp{path: path, delete: true})
}

func (b *gormBatch) Len() int {
	return len(b.ops)
}

// Commit applies all queued mutations in one transaction. Batches above
// BatchLimit are rejected outright, mirroring the backing store's ceiling.
func (b *gormBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > BatchLimit {
		return fmt.Errorf("batch of %d exceeds limit of %d operations", len(b.ops), BatchLimit)
	}

	collections := make(map[string]bool)

	err := b.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range b.ops {
			collection, id, err := SplitPath(op.path)
			if err != nil {
				return err
			}
			collections[collection] = true

			if op.delete {
				if err := tx.Where("collection = ? AND doc_id = ?", collection, id).
					Delete(&model.Document{}).Error; err != nil {
					return err
				}
				continue
			}
			if err := setInTx(tx, collection, id, op.data, op.merge); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for collection := range collections {
		b.store.notify(collection)
	}
	return nil
}

func setInTx(tx *gorm.DB, collection, id string, data map[string]interface{}, merge bool) error {
	var existing model.Document
	err := tx.Where("collection = ? AND doc_id = ?", collection, id).First(&existing).Error
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	body := data
	if merge && found {
		current, err := decodeData(existing.Data)
		if err != nil {
			return err
		}
		for k, v := range data {
			current[k] = v
		}
		body = current
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	if found {
		return tx.Model(&model.Document{}).
			Where("collection = ? AND doc_id = ?", collection, id).
			Update("data", datatypes.JSON(encoded)).Error
	}
	return tx.Create(&model.Document{
		Collection: collection,
		DocId:      id,
		Data:       datatypes.JSON(encoded),
	}).Error
}

func decodeData(raw datatypes.JSON) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
