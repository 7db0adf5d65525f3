// Package service provides business-logic for the app
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/mwlogger"
	"github.com/UnendingLoop/ImageLab/internal/operations"
	"github.com/UnendingLoop/ImageLab/internal/poller"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/UnendingLoop/ImageLab/internal/provider/claid"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
	"github.com/UnendingLoop/ImageLab/internal/provider/serpapi"
	"github.com/UnendingLoop/ImageLab/internal/provider/vision"
	"github.com/wb-go/wbf/zlog"
)

// BackgroundRemover - Remove.bg
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, img model.ImageReference) ([]byte, error)
}

// ModelBuilder - асинхронная генерация 3D-модели (Meshy)
type ModelBuilder interface {
	CreateTask(ctx context.Context, imageSource string) (string, error)
	poller.StatusFetcher
}

type Annotator interface {
	Annotate(ctx context.Context, img model.ImageReference, features []string) (*vision.Annotation, error)
}

type ImageEditor interface {
	Edit(ctx context.Context, payload operations.Payload) (*claid.EditResult, error)
}

// AssetCDN - Admin API, подписанная загрузка и URL доставки
type AssetCDN interface {
	CanAdmin() bool
	UploadSigned(ctx context.Context, file string) (*cloudinary.UploadResult, error)
	Resource(ctx context.Context, publicID string) (*model.AssetMetadata, json.RawMessage, error)
	DeliveryURL(publicID string, t cloudinary.Transformation) string
}

type VisualSearcher interface {
	Lens(ctx context.Context, imageURL string) (*serpapi.LensResult, error)
}

// AssetRelay - превращает base64 в публичный URL, который вендор сможет скачать
type AssetRelay interface {
	Publish(ctx context.Context, img model.ImageReference) (string, error)
}

// EventPublisher - события жизненного цикла 3D-задач
type EventPublisher interface {
	Publish(ctx context.Context, ev kafka.JobEvent) error
}

// Deps - nil-зависимость означает, что вендор не сконфигурирован
type Deps struct {
	BackgroundRemover BackgroundRemover
	ModelBuilder      ModelBuilder
	Vision            Annotator
	Editor            ImageEditor
	CDN               AssetCDN
	Search            VisualSearcher
	Relay             AssetRelay
	Events            EventPublisher
	HTTP              provider.Doer
	Poller            *poller.Poller
	ProjectID         string
}

type ImageService struct {
	bgRemover BackgroundRemover
	builder   ModelBuilder
	vision    Annotator
	editor    ImageEditor
	cdn       AssetCDN
	search    VisualSearcher
	relay     AssetRelay
	events    EventPublisher
	http      provider.Doer
	poller    *poller.Poller
	projectID string
}

func NewImageService(d Deps) *ImageService {
	svc := &ImageService{
		bgRemover: d.BackgroundRemover,
		builder:   d.ModelBuilder,
		vision:    d.Vision,
		editor:    d.Editor,
		cdn:       d.CDN,
		search:    d.Search,
		relay:     d.Relay,
		events:    d.Events,
		http:      d.HTTP,
		poller:    d.Poller,
		projectID: d.ProjectID,
	}

	if svc.events == nil {
		svc.events = kafka.NoopPublisher{}
	}
	if svc.http == nil {
		svc.http = provider.DefaultClient
	}
	if svc.poller == nil {
		svc.poller = poller.New(poller.DefaultStrategy, poller.WithTransition(logTransition))
	}
	return svc
}

func logTransition(from, to model.JobState, job model.JobHandle) {
	zlog.Logger.Debug().
		Str("task_id", job.ID).
		Int("attempts", job.Attempts).
		Msg(fmt.Sprintf("3D task %s -> %s", from, to))
}

// vendorFailure логирует ошибку вендора и решает, что из нее можно отдать клиенту
func vendorFailure(ctx context.Context, what string, err error) error {
	logger := mwlogger.LoggerFromContext(ctx)
	logger.Error().Err(err).Msg(what)

	var upstream *model.UpstreamError
	switch {
	case errors.As(err, &upstream),
		errors.Is(err, model.ErrVendorTimeout),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrNotConfigured),
		errors.Is(err, model.ErrIncorrectBase64),
		errors.Is(err, model.ErrUnsupportedFormat):
		return err
	default:
		return fmt.Errorf("%w: %s", model.ErrCommon500, err.Error())
	}
}
