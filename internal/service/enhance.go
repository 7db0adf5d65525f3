package service

import (
	"context"
	"fmt"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/mwlogger"
	"github.com/UnendingLoop/ImageLab/internal/normalizer"
	"github.com/UnendingLoop/ImageLab/internal/operations"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/UnendingLoop/ImageLab/internal/provider/claid"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
)

const megapixel = 1_000_000

// Enhance sanitizes the requested operations, runs the edit and scores the output.
// Inline images are relayed first: the vendor only accepts public URLs.
func (s *ImageService) Enhance(ctx context.Context, req model.EnhanceRequest) (*model.Enhancement, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := validateImage(&req.ImageReference); err != nil {
		return nil, err
	}
	if s.editor == nil {
		return nil, &model.ConfigError{Vendor: claid.Name}
	}

	input, err := s.publicURL(ctx, req.ImageReference)
	if err != nil {
		return nil, err
	}

	payload := operations.BuildPayload(input, req.Operations, req.Output)
	res, err := s.editor.Edit(ctx, payload)
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to enhance image", err)
	}
	if res.Output.TmpURL == "" {
		return nil, fmt.Errorf("%s %w", claid.Name, model.ErrNoResultURL)
	}

	// у вендора нет размера файла в ответе - спрашиваем HEAD-ом
	size, err := provider.ContentLength(ctx, s.http, res.Output.TmpURL)
	if err != nil || size < 0 {
		logger.Warn().Err(err).Msg("Failed to probe enhanced image size")
		size = 0
	}

	validation := normalizer.Normalize(model.AssetMetadata{
		Width:     res.Output.Width,
		Height:    res.Output.Height,
		Format:    res.Output.Format,
		Bytes:     size,
		SecureURL: res.Output.TmpURL,
	})
	resultURL := res.Output.TmpURL
	validation.ResultURL = &resultURL

	return &model.Enhancement{
		Envelope:  model.NewEnvelope(model.KindEnhancement),
		ResultURL: resultURL,
		Metadata: model.EnhancementMetadata{
			OriginalSize: res.Input.MPs * megapixel,
			NewSize:      res.Output.MPs * megapixel,
			Width:        res.Output.Width,
			Height:       res.Output.Height,
			Format:       res.Output.Format,
		},
		Validation: validation,
	}, nil
}

// publicURL returns the image URL, relaying inline data first.
func (s *ImageService) publicURL(ctx context.Context, img model.ImageReference) (string, error) {
	if !img.IsInline() {
		return img.URL, nil
	}
	if s.relay == nil {
		return "", &model.ConfigError{Vendor: "Asset relay"}
	}
	if err := validateInline(img); err != nil {
		return "", err
	}

	u, err := s.relay.Publish(ctx, img)
	if err != nil {
		return "", vendorFailure(ctx, "Failed to upload image", err)
	}

	// CDN отдает картинку для просмотра, вендору нужна прямая загрузка
	if _, ok := cloudinary.PublicIDFromURL(u); ok {
		u = cloudinary.AttachmentURL(u)
	}
	return u, nil
}
