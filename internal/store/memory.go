package store

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// memoryBackend keeps documents in process memory. It backs tests and the
// "memory" storage backend.
type memoryBackend struct {
	collections map[string]map[string]Document
}

// NewMemory constructs a Gateway over an empty in-memory backend.
func NewMemory(logger *slog.Logger) *Gateway {
	return newGateway(&memoryBackend{collections: make(map[string]map[string]Document)}, logger)
}

func (m *memoryBackend) get(_ context.Context, collection, key string) (Document, bool, error) {
	doc, ok := m.collections[collection][key]
	if !ok {
		return nil, false, nil
	}
	return cloneDocument(doc), true, nil
}

func (m *memoryBackend) put(_ context.Context, collection, key string, doc Document) error {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]Document)
		m.collections[collection] = docs
	}
	docs[key] = cloneDocument(doc)
	return nil
}

func (m *memoryBackend) list(_ context.Context, collection string, q listQuery) ([]Document, error) {
	type keyed struct {
		key  string
		date time.Time
		doc  Document
	}
	docs := m.collections[collection]
	rows := make([]keyed, 0, len(docs))
	for key, doc := range docs {
		if q.arrayField != "" && !containsString(doc[q.arrayField], q.arrayValue) {
			continue
		}
		date, _ := asTime(doc[fieldDate])
		rows = append(rows, keyed{key: key, date: date, doc: doc})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if q.desc {
			a, b = b, a
		}
		if q.orderByDate && !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		return a.key < b.key
	})

	if q.limit > 0 && len(rows) > q.limit {
		rows = rows[:q.limit]
	}
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, cloneDocument(r.doc))
	}
	return out, nil
}

func (m *memoryBackend) close() error { return nil }

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(cloneDocument(t))
	case map[string]any:
		return map[string]any(cloneDocument(t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
