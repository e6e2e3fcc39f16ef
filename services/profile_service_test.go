package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Dosada05/hackathon-teams/db"
	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileVisibility(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	users := repositories.NewUserRepository(store)
	require.NoError(t, users.Upsert(ctx, &models.UserProfile{ID: "public", DisplayName: "Pub", Visible: true}))
	require.NoError(t, users.Upsert(ctx, &models.UserProfile{ID: "private", DisplayName: "Priv"}))

	svc := NewProfileService(users, nil, discardLogger())

	p, err := svc.GetProfile(ctx, "public", nil)
	require.NoError(t, err)
	assert.Equal(t, "Pub", p.DisplayName)

	_, err = svc.GetProfile(ctx, "private", nil)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	p, err = svc.GetProfile(ctx, "private", &models.Session{UserID: "private"})
	require.NoError(t, err)
	assert.Equal(t, "Priv", p.DisplayName)

	_, err = svc.GetProfile(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = NewProfileService(repositories.NewUserRepository(db.NewUnavailableStore(nil)), nil, discardLogger()).GetProfile(ctx, "public", nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestUpdatePhotoReplacesPreviousObject(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	users := repositories.NewUserRepository(store)
	uploader := newFakeUploader()
	svc := NewProfileService(users, uploader, discardLogger())

	first, err := svc.UpdatePhoto(ctx, "u1", "image/png", 4, strings.NewReader("png1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.PhotoKey, "avatars/u1/"))
	assert.True(t, strings.HasSuffix(first.PhotoKey, ".png"))

	second, err := svc.UpdatePhoto(ctx, "u1", "image/jpeg", 4, strings.NewReader("jpg2"))
	require.NoError(t, err)
	assert.NotEqual(t, first.PhotoKey, second.PhotoKey)
	assert.Equal(t, []string{first.PhotoKey}, uploader.deleted)
	assert.NotContains(t, uploader.objects, first.PhotoKey)

	stored, found, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second.PhotoURL, stored.PhotoURL)
}

func TestUpdatePhotoValidation(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserRepository(db.NewMemoryStore())

	_, err := NewProfileService(users, nil, discardLogger()).UpdatePhoto(ctx, "u1", "image/png", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	svc := NewProfileService(users, newFakeUploader(), discardLogger())
	_, err = svc.UpdatePhoto(ctx, "u1", "image/gif", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedPhotoType)

	_, err = svc.UpdatePhoto(ctx, "u1", "image/png", MaxPhotoSize+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
}

func TestUpdatePhotoRemovesUploadWhenProfileWriteFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: db.NewMemoryStore(), failSet: errBoom}
	uploader := newFakeUploader()
	svc := NewProfileService(repositories.NewUserRepository(store), uploader, discardLogger())

	_, err := svc.UpdatePhoto(ctx, "u1", "image/webp", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrProfileUpdateFailed)
	assert.Empty(t, uploader.objects)
	assert.Len(t, uploader.deleted, 1)
}
