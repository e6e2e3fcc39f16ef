package db

import (
	"context"
	"fmt"
)

// unavailableStore подставляется вместо настоящего хранилища, когда его не удалось сконфигурировать:
// каждая операция завершается ErrStoreUnavailable, но приложение продолжает работать.
type unavailableStore struct {
	cause error
}

func NewUnavailableStore(cause error) DocumentStore {
	return &unavailableStore{cause: cause}
}

func (s *unavailableStore) err() error {
	if s.cause == nil {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, s.cause)
}

func (s *unavailableStore) Insert(context.Context, string, Fields) (string, error) {
	return "", s.err()
}

func (s *unavailableStore) Get(context.Context, string, string) (Document, bool, error) {
	return Document{}, false, s.err()
}

func (s *unavailableStore) Query(context.Context, string, string, interface{}) ([]Document, error) {
	return nil, s.err()
}

func (s *unavailableStore) Set(context.Context, string, string, Fields, bool) error {
	return s.err()
}

func (s *unavailableStore) Delete(context.Context, string, string) error {
	return s.err()
}

func (s *unavailableStore) Ping(context.Context) error {
	return s.err()
}

func (s *unavailableStore) Close() error { return nil }
