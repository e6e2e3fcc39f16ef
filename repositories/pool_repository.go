package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

// PoolRepository - записи пула свободных участников. Ключ записи - (пользователь, хакатон).
type PoolRepository interface {
	// Upsert создает запись или перезаписывает существующую с тем же ключом.
	Upsert(ctx context.Context, entry *models.PoolEntry) error

	// Get возвращает запись пользователя в пуле хакатона; found == false, если её нет.
	Get(ctx context.Context, userID, hackathonID string) (entry *models.PoolEntry, found bool, err error)

	ListByHackathon(ctx context.Context, hackathonID string) ([]*models.PoolEntry, error)
	Delete(ctx context.Context, id string) error
}

type documentPoolRepository struct {
	store db.DocumentStore
}

func NewPoolRepository(store db.DocumentStore) PoolRepository {
	return &documentPoolRepository{store: store}
}

func (r *documentPoolRepository) Upsert(ctx context.Context, entry *models.PoolEntry) error {
	id := models.PoolEntryID(entry.UserID, entry.HackathonID)
	fields := db.Fields{
		"userId":      entry.UserID,
		"hackathonId": entry.HackathonID,
		"createdAt":   timestampOrServer(entry.CreatedAt),
	}
	if err := r.store.Set(ctx, models.CollectionPool, id, fields, false); err != nil {
		return fmt.Errorf("failed to upsert pool entry %s: %w", id, err)
	}
	entry.ID = id
	return nil
}

func (r *documentPoolRepository) Get(ctx context.Context, userID, hackathonID string) (*models.PoolEntry, bool, error) {
	id := models.PoolEntryID(userID, hackathonID)
	doc, found, err := r.store.Get(ctx, models.CollectionPool, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get pool entry %s: %w", id, err)
	}
	if !found {
		return nil, false, nil
	}
	return poolEntryFromDocument(doc), true, nil
}

func (r *documentPoolRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]*models.PoolEntry, error) {
	docs, err := r.store.Query(ctx, models.CollectionPool, "hackathonId", hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool for hackathon %s: %w", hackathonID, err)
	}

	entries := make([]*models.PoolEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, poolEntryFromDocument(doc))
	}
	return entries, nil
}

func (r *documentPoolRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionPool, id); err != nil {
		return fmt.Errorf("failed to delete pool entry %s: %w", id, err)
	}
	return nil
}

func poolEntryFromDocument(doc db.Document) *models.PoolEntry {
	return &models.PoolEntry{
		ID:          doc.ID,
		UserID:      stringField(doc.Fields, "userId"),
		HackathonID: stringField(doc.Fields, "hackathonId"),
		CreatedAt:   timeField(doc.Fields, "createdAt"),
	}
}
