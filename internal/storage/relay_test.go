package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	putFn func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	keys  []string
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	m.keys = append(m.keys, key)
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) PublicURL(key string) string {
	return "http://minio:9000/relay-bucket/" + key
}

type mockUploader struct {
	uploadFn func(ctx context.Context, file string) (*cloudinary.UploadResult, error)
}

func (m *mockUploader) UploadUnsigned(ctx context.Context, file string) (*cloudinary.UploadResult, error) {
	return m.uploadFn(ctx, file)
}

func TestBucketRelay_Publish(t *testing.T) {
	tests := []struct {
		name    string
		img     model.ImageReference
		putErr  error
		wantErr error
		wantExt string
	}{
		{name: "png", img: model.ImageReference{Base64: "data:image/png;base64,iVBORw=="}, wantExt: ".png"},
		{name: "jpeg", img: model.ImageReference{Base64: "data:image/jpeg;base64,/9j/"}, wantExt: ".jpg"},
		{name: "bare payload defaults to png", img: model.ImageReference{Base64: "iVBORw=="}, wantExt: ".png"},
		{name: "bad payload", img: model.ImageReference{Base64: "data:image/png;base64,%%%"}, wantErr: model.ErrIncorrectBase64},
		{name: "not a data url", img: model.ImageReference{Base64: "data:image/png,plain"}, wantErr: model.ErrIncorrectBase64},
		{name: "unsupported mime", img: model.ImageReference{Base64: "data:image/tiff;base64,AAAA"}, wantErr: model.ErrUnsupportedFormat},
		{name: "storage down", img: model.ImageReference{Base64: "data:image/png;base64,iVBORw=="}, putErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strg := &mockStorage{putFn: func(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
				b, err := io.ReadAll(r)
				require.NoError(t, err)
				require.Equal(t, int64(len(b)), size)
				return tt.putErr
			}}

			u, err := NewBucketRelay(strg).Publish(context.Background(), tt.img)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, strg.keys)
			case tt.putErr != nil:
				require.ErrorIs(t, err, tt.putErr)
			default:
				require.NoError(t, err)
				require.Len(t, strg.keys, 1)
				require.True(t, strings.HasPrefix(strg.keys[0], "relay/"))
				require.True(t, strings.HasSuffix(strg.keys[0], tt.wantExt))
				require.Equal(t, "http://minio:9000/relay-bucket/"+strg.keys[0], u)
			}
		})
	}
}

func TestBucketRelay_URLPassesThrough(t *testing.T) {
	strg := &mockStorage{}
	u, err := NewBucketRelay(strg).Publish(context.Background(), model.ImageReference{URL: "https://x/img.jpg"})
	require.NoError(t, err)
	require.Equal(t, "https://x/img.jpg", u)
	require.Empty(t, strg.keys)
}

func TestCDNRelay_Publish(t *testing.T) {
	up := &mockUploader{uploadFn: func(ctx context.Context, file string) (*cloudinary.UploadResult, error) {
		// голый base64 дополняется до полного data-URL
		require.Equal(t, "data:image/png;base64,AAAA", file)
		return &cloudinary.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/a.png"}, nil
	}}

	u, err := NewCDNRelay(up).Publish(context.Background(), model.ImageReference{Base64: "AAAA"})
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/a.png", u)

	boom := &model.UpstreamError{Vendor: "Cloudinary", Status: 400, Message: "Upload preset not found"}
	up.uploadFn = func(ctx context.Context, file string) (*cloudinary.UploadResult, error) { return nil, boom }
	_, err = NewCDNRelay(up).Publish(context.Background(), model.ImageReference{Base64: "AAAA"})
	require.ErrorIs(t, err, boom)
}
