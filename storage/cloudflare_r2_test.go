package storage

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{"https://cdn.example.com", "avatars/u1.svg", "https://cdn.example.com/avatars/u1.svg"},
		{"https://cdn.example.com/", "/avatars/u1.svg", "https://cdn.example.com/avatars/u1.svg"},
		{"https://cdn.example.com/media", "avatars/u1.svg", "https://cdn.example.com/media/avatars/u1.svg"},
		{"https://cdn.example.com/media/", "avatars/u1.svg", "https://cdn.example.com/media/avatars/u1.svg"},
		{"https://cdn.example.com", "", ""},
	}

	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, publicURL(base, tt.key))
	}
	assert.Empty(t, publicURL(nil, "avatars/u1.svg"))
}

func TestNewCloudflareR2UploaderValidatesConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "bucket",
		PublicBaseURL:   "not a url",
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
