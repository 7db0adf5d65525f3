// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
)

// публичное чтение объектов бакета - вендоры забирают картинку по ссылке
const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

type MinioImageStorage struct {
	bucket    string
	publicURL string
	client    *minio.Client
}

func NewMinioClient(cfg *config.Config) (*MinioImageStorage, error) {
	bucket := cfg.GetString("BUCKET_NAME")

	if bucket == "" {
		bucket = "relay"
		log.Printf("Bucket name is empty. Using default value %q...", bucket)
	}

	user := cfg.GetString("MINIO_USER")
	pass := cfg.GetString("MINIO_PASS")
	addr := cfg.GetString("MINIO_ENDPOINT")
	secure := strings.EqualFold(cfg.GetString("MINIO_SECURE"), "true")
	if addr == "" {
		return nil, errors.New("MINIO_ENDPOINT is empty")
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(addr, &minio.Options{
		Creds:  credentials.NewStaticV4(user, pass, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет и открываем его на чтение
	if err := ensurePublicBucket(context.Background(), strg, bucket); err != nil {
		log.Println("Failed to prepare bucket in MinIO:", err)
		return nil, err
	}

	publicURL := strings.TrimRight(cfg.GetString("MINIO_PUBLIC_URL"), "/")
	if publicURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, addr, bucket)
	}

	return &MinioImageStorage{bucket: bucket, publicURL: publicURL, client: strg}, nil
}

func (s *MinioImageStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}

	return nil
}

// PublicURL - ссылка, по которой объект доступен без авторизации
func (s *MinioImageStorage) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func ensurePublicBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	return client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket))
}
