package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore создает клиент Firestore. Учетные данные берутся из окружения
// (GOOGLE_APPLICATION_CREDENTIALS, metadata server, FIRESTORE_EMULATOR_HOST).
func NewFirestoreStore(ctx context.Context, projectID, databaseID string) (DocumentStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: firestore project id is not set", ErrStoreUnavailable)
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client for project %s: %w", projectID, err)
	}
	return &firestoreStore{client: client}, nil
}

func (s *firestoreStore) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	if collection == "" {
		return "", ErrEmptyCollection
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(fields))
	if err != nil {
		return "", fmt.Errorf("firestore insert into %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	if err := checkRef(collection, id); err != nil {
		return Document{}, false, err
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return Document{ID: snap.Ref.ID, Fields: snap.Data()}, true, nil
}

func (s *firestoreStore) Query(ctx context.Context, collection, field string, value interface{}) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}
	iter := s.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	docs := make([]Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s where %s == %v: %w", collection, field, value, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, fields Fields, merge bool) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, toFirestore(fields), opts...); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkRef(collection, id); err != nil {
		return err
	}
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Ping делает реальный запрос к Firestore: создание клиента само по себе сеть не трогает.
func (s *firestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collections(ctx)
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *firestoreStore) Close() error {
	return s.client.Close()
}

func toFirestore(fields Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}
