package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Dosada05/hackathon-teams/db"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")

// failingStore - хранилище в памяти, в котором выбранные операции завершаются ошибкой.
type failingStore struct {
	*db.MemoryStore
	failQuery  error
	failGet    error
	failInsert error
	failSet    error
}

func (s *failingStore) Query(ctx context.Context, collection, field string, value interface{}) ([]db.Document, error) {
	if s.failQuery != nil {
		return nil, s.failQuery
	}
	return s.MemoryStore.Query(ctx, collection, field, value)
}

func (s *failingStore) Get(ctx context.Context, collection, id string) (db.Document, bool, error) {
	if s.failGet != nil {
		return db.Document{}, false, s.failGet
	}
	return s.MemoryStore.Get(ctx, collection, id)
}

func (s *failingStore) Insert(ctx context.Context, collection string, fields db.Fields) (string, error) {
	if s.failInsert != nil {
		return "", s.failInsert
	}
	return s.MemoryStore.Insert(ctx, collection, fields)
}

func (s *failingStore) Set(ctx context.Context, collection, id string, fields db.Fields, merge bool) error {
	if s.failSet != nil {
		return s.failSet
	}
	return s.MemoryStore.Set(ctx, collection, id, fields, merge)
}
