package service

import (
	"context"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/UnendingLoop/ImageLab/internal/provider/removebg"
)

// RemoveBackground returns the cut-out as a PNG data-URL.
func (s *ImageService) RemoveBackground(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error) {
	if err := validateImage(&img); err != nil {
		return nil, err
	}
	if s.bgRemover == nil {
		return nil, &model.ConfigError{Vendor: removebg.Name}
	}

	png, err := s.bgRemover.RemoveBackground(ctx, img)
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to remove background", err)
	}

	return &model.BackgroundRemoval{
		Envelope:  model.NewEnvelope(model.KindBackgroundRemoval),
		ResultURL: provider.EncodeDataURL(model.PNG, png),
	}, nil
}
