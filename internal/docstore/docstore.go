package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// BatchLimit is the hard ceiling of mutations one atomic batch may carry.
// Commit rejects larger batches instead of splitting them; chunking is the
// caller's responsibility.
const BatchLimit = 500

// Where is a single field filter. Op supports "==" only for now.
type Where struct {
	Field string
	Op    string
	Value interface{}
}

// OrderBy orders query results by a top-level document field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Query addresses one collection with optional filters and ordering.
type Query struct {
	Collection string
	Wheres     []Where
	OrderBy    *OrderBy
}

// Document is one stored record: its id plus the decoded JSON body.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Store is the document database contract. Paths address documents as
// "collection/.../id", e.g. "users/a@b.c/chats/1712345".
type Store interface {
	Get(ctx context.Context, path string) (map[string]interface{}, error)
	// Set upserts. With merge, top-level keys of data are merged into the
	// existing document; without, the document is replaced.
	Set(ctx context.Context, path string, data map[string]interface{}, merge bool) error
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, q Query) ([]Document, error)
	// Subscribe delivers the full, ordered result set of q immediately and
	// again after every change to the collection. onError receives query and
	// listener failures. The returned func terminates the subscription.
	Subscribe(ctx context.Context, q Query, onData func([]Document), onError func(error)) (func(), error)
	Batch() WriteBatch
}

// WriteBatch queues mutations that commit atomically together, up to
// BatchLimit operations.
type WriteBatch interface {
	Set(path string, data map[string]interface{}, merge bool)
	Delete(path string)
	Len() int
	Commit(ctx context.Context) error
}

// SplitPath separates a document path into its collection and document id.
func SplitPath(path string) (collection, id string, err error) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	return path[:idx], path[idx+1:], nil
}
