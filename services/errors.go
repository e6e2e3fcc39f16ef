package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации
	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidHackathonID   = errors.New("invalid hackathon id")
	ErrUnsupportedPhotoType = errors.New("photo must be a PNG, JPEG or WebP image")
	ErrPhotoTooLarge        = errors.New("photo is too large")

	// Ошибки, специфичные для сущностей
	ErrProfileNotFound = errors.New("profile not found")

	// Ошибки операций с хранилищем
	ErrRosterLoadFailed    = errors.New("failed to load teams")
	ErrJoinRequestFailed   = errors.New("failed to send join request")
	ErrJoinPoolFailed      = errors.New("failed to join the pool")
	ErrProfileLoadFailed   = errors.New("failed to load profile")
	ErrProfileUpdateFailed = errors.New("failed to update profile")
	ErrUploadsDisabled     = errors.New("photo uploads are not configured")
	ErrStoreUnavailable    = errors.New("data store is unavailable")
)
