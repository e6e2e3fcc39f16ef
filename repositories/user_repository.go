package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
)

// UserRepository - публичные профили пользователей. ID документа совпадает с ID пользователя.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (profile *models.UserProfile, found bool, err error)

	// Upsert сливает поля профиля с уже сохраненными.
	Upsert(ctx context.Context, profile *models.UserProfile) error

	UpdatePhoto(ctx context.Context, id, photoURL, photoKey string) error
}

type documentUserRepository struct {
	store db.DocumentStore
}

func NewUserRepository(store db.DocumentStore) UserRepository {
	return &documentUserRepository{store: store}
}

func (r *documentUserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, bool, error) {
	doc, found, err := r.store.Get(ctx, models.CollectionUsers, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	if !found {
		return nil, false, nil
	}
	return &models.UserProfile{
		ID:             doc.ID,
		DisplayName:    stringField(doc.Fields, "displayName"),
		PhotoURL:       stringField(doc.Fields, "photoURL"),
		PhotoKey:       stringField(doc.Fields, "photoKey"),
		GithubHandle:   stringField(doc.Fields, "githubHandle"),
		LinkedInHandle: stringField(doc.Fields, "linkedinHandle"),
		Visible:        boolField(doc.Fields, "visible"),
	}, true, nil
}

func (r *documentUserRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	fields := db.Fields{
		"displayName":    p.DisplayName,
		"githubHandle":   p.GithubHandle,
		"linkedinHandle": p.LinkedInHandle,
		"visible":        p.Visible,
	}
	// пустые значения фото не затирают уже загруженное
	if p.PhotoURL != "" {
		fields["photoURL"] = p.PhotoURL
	}
	if p.PhotoKey != "" {
		fields["photoKey"] = p.PhotoKey
	}
	if err := r.store.Set(ctx, models.CollectionUsers, p.ID, fields, true); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", p.ID, err)
	}
	return nil
}

func (r *documentUserRepository) UpdatePhoto(ctx context.Context, id, photoURL, photoKey string) error {
	fields := db.Fields{
		"photoURL": photoURL,
		"photoKey": photoKey,
	}
	if err := r.store.Set(ctx, models.CollectionUsers, id, fields, true); err != nil {
		return fmt.Errorf("failed to update photo of user %s: %w", id, err)
	}
	return nil
}
