package db

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore - хранилище в памяти процесса. Используется в тестах и для локальных демо (STORE_DRIVER=memory).
// Документы коллекции возвращаются в порядке вставки.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

type memoryCollection struct {
	order []string
	docs  map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]Fields)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if collection == "" {
		return "", ErrEmptyCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	c := s.collection(collection)
	c.order = append(c.order, id)
	c.docs[id] = cloneFields(resolveTimestamps(fields, s.now()))
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	if err := checkRef(collection, id); err != nil {
		return Document{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return Document{}, false, nil
	}
	fields, ok := c.docs[id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Fields: cloneFields(fields)}, true, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0)
	c, ok := s.collections[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range c.order {
		fields := c.docs[id]
		v, ok := fields[field]
		if !ok || !reflect.DeepEqual(v, value) {
			continue
		}
		docs = append(docs, Document{ID: id, Fields: cloneFields(fields)})
	}
	return docs, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRef(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	incoming := cloneFields(resolveTimestamps(fields, s.now()))
	existing, ok := c.docs[id]
	if !ok {
		c.order = append(c.order, id)
		c.docs[id] = incoming
		return nil
	}
	if !merge {
		c.docs[id] = incoming
		return nil
	}
	for k, v := range incoming {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRef(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, docID := range c.order {
		if docID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count возвращает число документов в коллекции.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return 0
	}
	return len(c.docs)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error { return nil }

func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		switch vv := v.(type) {
		case []string:
			out[k] = append([]string(nil), vv...)
		case []interface{}:
			out[k] = append([]interface{}(nil), vv...)
		case map[string]interface{}:
			out[k] = map[string]interface{}(cloneFields(vv))
		case Fields:
			out[k] = cloneFields(vv)
		default:
			out[k] = v
		}
	}
	return out
}
