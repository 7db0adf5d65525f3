// Package storage turns inline images into public URLs that vendors can download
package storage

import (
	"context"
	"log"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

// NewImgStorage connects to MinIO, retrying up to attempts times; nil means the relay stays off.
func NewImgStorage(ctx context.Context, cfg *config.Config, attempts int, delay time.Duration) *miniostorage.MinioImageStorage {
	for i := 1; i <= attempts; i++ {
		log.Printf("Connecting to IMG-storage (try #%d)...", i)
		client, err := miniostorage.NewMinioClient(cfg)
		if err == nil {
			log.Println("Successfully connected IMG-storage!")
			return client
		}
		log.Printf("Failed to init connection to IMG-storage: %v\nNext retry in %v...", err, delay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}

	log.Println("IMG-storage is unreachable, relay disabled")
	return nil
}
