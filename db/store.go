// Package db содержит абстракцию документного хранилища и её реализации
// (Firestore, PostgreSQL JSONB, in-memory).
package db

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStoreUnavailable - хранилище не сконфигурировано или недоступно.
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrEmptyCollection  = errors.New("collection name is required")
	ErrEmptyDocumentID  = errors.New("document id is required")
)

type serverTimestamp string

// ServerTimestamp - значение-маркер: хранилище подставит вместо него время сервера в момент записи.
const ServerTimestamp = serverTimestamp("REQUEST_TIME")

// Fields - содержимое документа.
type Fields map[string]interface{}

// Document - документ, прочитанный из хранилища.
type Document struct {
	ID     string
	Fields Fields
}

// DocumentStore - минимальный набор операций над именованными коллекциями,
// которым пользуются репозитории.
type DocumentStore interface {
	// Insert создает документ с идентификатором, выданным хранилищем.
	Insert(ctx context.Context, collection string, fields Fields) (string, error)

	// Get читает документ по id. found == false, если документа нет.
	Get(ctx context.Context, collection, id string) (doc Document, found bool, err error)

	// Query возвращает все документы коллекции, у которых field == value.
	Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error)

	// Set записывает документ с заданным id. При merge == true поля сливаются с существующими.
	Set(ctx context.Context, collection, id string, fields Fields, merge bool) error

	// Delete удаляет документ. Удаление отсутствующего документа не является ошибкой.
	Delete(ctx context.Context, collection, id string) error

	Ping(ctx context.Context) error
	Close() error
}

func checkRef(collection, id string) error {
	if collection == "" {
		return ErrEmptyCollection
	}
	if id == "" {
		return ErrEmptyDocumentID
	}
	return nil
}

// resolveTimestamps возвращает копию fields, в которой маркеры ServerTimestamp заменены на now.
func resolveTimestamps(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}
