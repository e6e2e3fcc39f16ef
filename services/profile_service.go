package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/hackathon-teams/models"
	"github.com/Dosada05/hackathon-teams/repositories"
	"github.com/Dosada05/hackathon-teams/storage"
	"github.com/google/uuid"
)

// MaxPhotoSize - ограничение на размер загружаемого фото профиля.
const MaxPhotoSize = 5 << 20

var photoExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type ProfileService interface {
	// GetProfile возвращает профиль, если он публичный или принадлежит текущему пользователю.
	GetProfile(ctx context.Context, userID string, session *models.Session) (*models.UserProfile, error)

	UpdatePhoto(ctx context.Context, userID string, contentType string, size int64, reader io.Reader) (*models.UserProfile, error)
}

type profileService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewProfileService - uploader может быть nil, тогда загрузка фото отключена.
func NewProfileService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) ProfileService {
	return &profileService{
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string, session *models.Session) (*models.UserProfile, error) {
	profile, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreError(ErrProfileLoadFailed, err)
	}
	if !found {
		return nil, ErrProfileNotFound
	}
	isOwner := session.Authenticated() && session.UserID == userID
	if !profile.Visible && !isOwner {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *profileService) UpdatePhoto(ctx context.Context, userID string, contentType string, size int64, reader io.Reader) (*models.UserProfile, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}
	if size > MaxPhotoSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrPhotoTooLarge, size, MaxPhotoSize)
	}

	current, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapStoreError(ErrProfileLoadFailed, err)
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, io.LimitReader(reader, MaxPhotoSize))
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo for user %s: %w", userID, err)
	}

	if err := s.userRepo.UpdatePhoto(ctx, userID, result.Location, result.Key); err != nil {
		// Профиль не обновился - загруженный файл больше не нужен.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to remove orphaned photo", slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, wrapStoreError(ErrProfileUpdateFailed, err)
	}

	if found && current.PhotoKey != "" && current.PhotoKey != result.Key {
		// Старое фото удаляем после успешного обновления; ошибку только логируем.
		if err := s.uploader.Delete(ctx, current.PhotoKey); err != nil {
			s.logger.Warn("failed to delete previous photo",
				slog.String("user_id", userID),
				slog.String("key", current.PhotoKey),
				slog.Any("error", err),
			)
		}
	}

	profile := &models.UserProfile{ID: userID}
	if found {
		profile = current
	}
	profile.PhotoURL = result.Location
	profile.PhotoKey = result.Key
	return profile, nil
}
