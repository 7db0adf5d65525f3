package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
	"github.com/google/uuid"
)

const relayPrefix = "relay/"

// ObjectStorage - контракт для работы с хранилищем
type ObjectStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	PublicURL(key string) string
}

// BucketRelay puts inline images into a public bucket.
type BucketRelay struct {
	storage ObjectStorage
}

func NewBucketRelay(s ObjectStorage) *BucketRelay {
	return &BucketRelay{storage: s}
}

// Publish returns URLs untouched and uploads data-URLs under a fresh key.
func (r *BucketRelay) Publish(ctx context.Context, img model.ImageReference) (string, error) {
	if !img.IsInline() {
		return img.URL, nil
	}

	data, err := provider.ParseDataURL(img.Base64)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrIncorrectBase64, err)
	}
	raw, err := data.Decode()
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrIncorrectBase64, err)
	}

	ext, ok := model.GetImageFileExt[data.MIME]
	if !ok {
		return "", model.ErrUnsupportedFormat
	}

	key := relayPrefix + uuid.New().String() + ext
	if err := r.storage.Put(ctx, key, int64(len(raw)), data.MIME, bytes.NewReader(raw)); err != nil {
		return "", fmt.Errorf("failed to put relay object %q: %w", key, err)
	}
	return r.storage.PublicURL(key), nil
}

// Uploader - загрузка без подписи через upload preset
type Uploader interface {
	UploadUnsigned(ctx context.Context, file string) (*cloudinary.UploadResult, error)
}

// CDNRelay uploads inline images to the CDN with an unsigned preset.
type CDNRelay struct {
	uploader Uploader
}

func NewCDNRelay(u Uploader) *CDNRelay {
	return &CDNRelay{uploader: u}
}

func (r *CDNRelay) Publish(ctx context.Context, img model.ImageReference) (string, error) {
	if !img.IsInline() {
		return img.URL, nil
	}

	data, err := provider.ParseDataURL(img.Base64)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrIncorrectBase64, err)
	}

	res, err := r.uploader.UploadUnsigned(ctx, data.String())
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}
