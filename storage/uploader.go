// Package storage хранит аватары пользователей в объектном хранилище (Cloudflare R2).
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidConfig = errors.New("invalid object storage configuration")

// UploadResult - сохраненный аватар: Key пишется в профиль как photoKey, Location - как photoURL.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader - хранилище аватаров. Ключи имеют вид avatars/<userId>/<имя>.
// ProfileService кладет сюда загруженные фото и удаляет замененные, Seeder - SVG тестового профиля.
type FileUploader interface {
	// Upload сохраняет аватар под key; contentType уходит в метаданные объекта.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete удаляет замененный аватар.
	Delete(ctx context.Context, key string) error

	// GetPublicURL строит адрес, по которому фронтенд показывает аватар.
	GetPublicURL(key string) string
}
