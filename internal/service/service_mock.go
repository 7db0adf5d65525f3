package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/operations"
	"github.com/UnendingLoop/ImageLab/internal/poller"
	"github.com/UnendingLoop/ImageLab/internal/provider/claid"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
	"github.com/UnendingLoop/ImageLab/internal/provider/serpapi"
	"github.com/UnendingLoop/ImageLab/internal/provider/vision"
)

// MOCK VENDORS

type mockBgRemover struct {
	removeFn func(ctx context.Context, img model.ImageReference) ([]byte, error)
}

func (m *mockBgRemover) RemoveBackground(ctx context.Context, img model.ImageReference) ([]byte, error) {
	return m.removeFn(ctx, img)
}

type mockBuilder struct {
	createFn func(ctx context.Context, src string) (string, error)
	statusFn func(ctx context.Context, id string) (*poller.Status, error)
}

func (m *mockBuilder) CreateTask(ctx context.Context, src string) (string, error) {
	return m.createFn(ctx, src)
}

func (m *mockBuilder) JobStatus(ctx context.Context, id string) (*poller.Status, error) {
	return m.statusFn(ctx, id)
}

type mockAnnotator struct {
	annotateFn func(ctx context.Context, img model.ImageReference, features []string) (*vision.Annotation, error)
}

func (m *mockAnnotator) Annotate(ctx context.Context, img model.ImageReference, features []string) (*vision.Annotation, error) {
	return m.annotateFn(ctx, img, features)
}

type mockEditor struct {
	editFn func(ctx context.Context, p operations.Payload) (*claid.EditResult, error)
}

func (m *mockEditor) Edit(ctx context.Context, p operations.Payload) (*claid.EditResult, error) {
	return m.editFn(ctx, p)
}

type mockCDN struct {
	admin      bool
	uploadFn   func(ctx context.Context, file string) (*cloudinary.UploadResult, error)
	resourceFn func(ctx context.Context, id string) (*model.AssetMetadata, json.RawMessage, error)
}

func (m *mockCDN) CanAdmin() bool { return m.admin }

func (m *mockCDN) UploadSigned(ctx context.Context, file string) (*cloudinary.UploadResult, error) {
	return m.uploadFn(ctx, file)
}

func (m *mockCDN) Resource(ctx context.Context, id string) (*model.AssetMetadata, json.RawMessage, error) {
	return m.resourceFn(ctx, id)
}

func (m *mockCDN) DeliveryURL(id string, t cloudinary.Transformation) string {
	return "https://res.cloudinary.com/demo/image/upload/" + t.String() + "/" + id
}

type mockSearcher struct {
	lensFn func(ctx context.Context, u string) (*serpapi.LensResult, error)
}

func (m *mockSearcher) Lens(ctx context.Context, u string) (*serpapi.LensResult, error) {
	return m.lensFn(ctx, u)
}

// MOCK RELAY

type mockRelay struct {
	publishFn func(ctx context.Context, img model.ImageReference) (string, error)
}

func (m *mockRelay) Publish(ctx context.Context, img model.ImageReference) (string, error) {
	return m.publishFn(ctx, img)
}

// MOCK PUBLISHER

type mockPublisher struct {
	publishFn func(ctx context.Context, ev kafka.JobEvent) error // необязательный

	mu     sync.Mutex
	events []kafka.JobEvent
}

func (m *mockPublisher) Publish(ctx context.Context, ev kafka.JobEvent) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, ev); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}

// MOCK HTTP

type mockDoer struct {
	doFn func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFn(req)
}

func noWait(context.Context, time.Duration) error { return nil }
