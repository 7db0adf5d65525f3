package service

import (
	"context"
	"encoding/json"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider/vision"
)

var emptyList = json.RawMessage(`[]`)

// DetectLabels relays the vendor annotation arrays as they are.
func (s *ImageService) DetectLabels(ctx context.Context, req model.VisionRequest) (*model.VisionLabels, error) {
	if err := validateImage(&req.ImageReference); err != nil {
		return nil, err
	}
	if s.vision == nil {
		return nil, &model.ConfigError{Vendor: vision.Name}
	}

	features := normalizeFeatures(req.Features, vision.DefaultFeatures)
	ann, err := s.vision.Annotate(ctx, req.ImageReference, features)
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to analyze image", err)
	}

	return &model.VisionLabels{
		Envelope: model.NewEnvelope(model.KindVisionLabels),
		Labels:   orEmpty(ann.Labels),
		Objects:  orEmpty(ann.Objects),
		Text:     orEmpty(ann.Text),
		Faces:    orEmpty(ann.Faces),
		Raw:      ann.Raw,
	}, nil
}

func orEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return emptyList
	}
	return raw
}
