package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store with the same semantics as the GORM
// implementation. It backs unit tests and dry runs: subscribers are invoked
// synchronously after each mutation, and committed batches are counted so
// chunking behavior can be asserted.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	subscribers map[int]*memorySubscription
	nextSubId   int

	// CommitCount is the number of successfully committed write batches.
	CommitCount int

	// FailQuery makes Query (and snapshot deliveries) fail. Test hook.
	FailQuery bool
	// FailSubscribe makes Subscribe fail synchronously. Test hook.
	FailSubscribe bool
}

type memorySubscription struct {
	query   Query
	onData  func([]Document)
	onError func(error)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		subscribers: make(map[int]*memorySubscription),
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	collection, id, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(doc), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.setLocked(collection, id, data, merge)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	collection, id, err := SplitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(q)
}

func (s *MemoryStore) Subscribe(ctx context.Context, q Query, onData func([]Document), onError func(error)) (func(), error) {
	if s.FailSubscribe {
		return nil, fmt.Errorf("subscription refused")
	}

	s.mu.Lock()
	id := s.nextSubId
	s.nextSubId++
	s.subscribers[id] = &memorySubscription{query: q, onData: onData, onError: onError}
	docs, err := s.queryLocked(q)
	s.mu.Unlock()

	if err != nil {
		onError(err)
	} else {
		onData(docs)
	}

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) Batch() WriteBatch {
	return &memoryBatch{store: s}
}

type memoryBatch struct {
	store *MemoryStore
	ops   []batchOp
}

func (b *memoryBatch) Set(path string, data map[string]interface{}, merge bool) {
	b.ops = append(b.ops, batchOp{path: path, data: data, merge: merge})
}

func (b *memoryBatch) Delete(path string) {
	b.ops = append(b.ops, batchOp{path: path, delete: true})
}

func (b *memoryBatch) Len() int {
	return len(b.ops)
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > BatchLimit {
		return fmt.Errorf("batch of %d exceeds limit of %d operations", len(b.ops), BatchLimit)
	}

	touched := make(map[string]bool)

	b.store.mu.Lock()
	for _, op := range b.ops {
		collection, id, err := SplitPath(op.path)
		if err != nil {
			b.store.mu.Unlock()
			return err
		}
		touched[collection] = true
		if op.delete {
			delete(b.store.collections[collection], id)
		} else {
			b.store.setLocked(collection, id, op.data, op.merge)
		}
	}
	b.store.CommitCount++
	b.store.mu.Unlock()

	for collection := range touched {
		b.store.notify(collection)
	}
	return nil
}

func (s *MemoryStore) setLocked(collection, id string, data map[string]interface{}, merge bool) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]interface{})
	}
	if merge {
		if existing, ok := s.collections[collection][id]; ok {
			merged := deepCopy(existing)
			for k, v := range data {
				merged[k] = v
			}
			s.collections[collection][id] = merged
			return
		}
	}
	s.collections[collection][id] = deepCopy(data)
}

func (s *MemoryStore) queryLocked(q Query) ([]Document, error) {
	if s.FailQuery {
		return nil, fmt.Errorf("query refused")
	}

	var docs []Document
	for id, data := range s.collections[q.Collection] {
		match := true
		for _, w := range q.Wheres {
			if fmt.Sprintf("%v", data[w.Field]) != fmt.Sprintf("%v", w.Value) {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, Document{ID: id, Data: deepCopy(data)})
		}
	}

	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Desc
		sort.Slice(docs, func(i, j int) bool {
			a := fmt.Sprintf("%v", docs[i].Data[field])
			b := fmt.Sprintf("%v", docs[j].Data[field])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return docs, nil
}

// notify re-runs each matching subscriber's query and hands it the fresh
// snapshot. Runs synchronously, so tests observe deliveries immediately.
func (s *MemoryStore) notify(collection string) {
	s.mu.Lock()
	var pending []*memorySubscription
	for _, sub := range s.subscribers {
		if sub.query.Collection == collection {
			pending = append(pending, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range pending {
		s.mu.Lock()
		docs, err := s.queryLocked(sub.query)
		s.mu.Unlock()
		if err != nil {
			sub.onError(err)
			continue
		}
		sub.onData(docs)
	}
}

func deepCopy(data map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
