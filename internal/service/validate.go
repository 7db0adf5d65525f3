package service

import (
	"context"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/normalizer"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
)

// ValidateCDN scores an asset from CDN metadata and builds its transformed delivery URL.
// Images outside the CDN are uploaded with a signed request first.
func (s *ImageService) ValidateCDN(ctx context.Context, req model.ValidateRequest) (*model.Validation, error) {
	if err := validateImage(&req.ImageReference); err != nil {
		return nil, err
	}
	if s.cdn == nil || !s.cdn.CanAdmin() {
		return nil, &model.ConfigError{Vendor: cloudinary.Name}
	}

	publicID, err := s.resolvePublicID(ctx, req.ImageReference)
	if err != nil {
		return nil, err
	}

	meta, raw, err := s.cdn.Resource(ctx, publicID)
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to fetch asset metadata", err)
	}

	resultURL := s.cdn.DeliveryURL(publicID, transformation(req.Operations))
	res := normalizer.Normalize(*meta)
	res.ResultURL = &resultURL

	return &model.Validation{
		Envelope:         model.NewEnvelope(model.KindValidation),
		NormalizedResult: res,
		RawData:          raw,
	}, nil
}

func (s *ImageService) resolvePublicID(ctx context.Context, img model.ImageReference) (string, error) {
	if strings.Contains(img.URL, "cloudinary.com") {
		id, ok := cloudinary.PublicIDFromURL(img.URL)
		if !ok {
			return "", model.ErrIncorrectURL
		}
		return id, nil
	}

	up, err := s.cdn.UploadSigned(ctx, img.Source())
	if err != nil {
		return "", vendorFailure(ctx, "Failed to upload image to CDN", err)
	}
	if up.PublicID == "" {
		return "", model.ErrIncorrectURL
	}
	return up.PublicID, nil
}

func transformation(ops model.CDNOperations) cloudinary.Transformation {
	t := cloudinary.Transformation{
		Resize:     ops.Resize != nil,
		Crop:       ops.Crop,
		Quality:    string(ops.Quality),
		Format:     ops.Format,
		Background: ops.Background,
	}
	if ops.Resize != nil {
		t.Width = ops.Resize.Width
		t.Height = ops.Resize.Height
	}
	return t
}
