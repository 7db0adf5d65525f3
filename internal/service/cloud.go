package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/UnendingLoop/ImageLab/internal/provider/vision"
)

const (
	cloudVendor     = "Google Cloud"
	vertexVendor    = "Google Cloud Vertex AI"
	defaultQuality  = 80
	defaultFormat   = "jpeg"
	defaultPrompt   = "Product lifestyle image"
	defaultStyle    = "modern"
	resizeMessage   = "Resize parameters configured. Connect to Cloud Run/Functions for actual processing."
	compressMessage = "Compression parameters configured. Connect to Cloud Run/Functions for actual processing."
	lifestyleMsg    = "Lifestyle generation configured. Requires Vertex AI Imagen API with OAuth2 authentication."
)

// формат -> доля размера после сжатия при quality=100
var compressionFactor = map[string]float64{
	"webp": 0.7,
	"jpeg": 0.85,
}

// CloudOperation describes a resize, compress or lifestyle job without doing it.
// Resize and compress read the image properties first so a bad image still fails here.
func (s *ImageService) CloudOperation(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error) {
	if err := validateImage(&req.ImageReference); err != nil {
		return nil, err
	}

	op := strings.ToLower(strings.TrimSpace(req.Operation))
	switch op {
	case "":
		return nil, model.ErrEmptyOperation
	case model.CloudResize, model.CloudCompress, model.CloudLifestyle:
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownOperation, req.Operation)
	}

	if s.vision == nil {
		return nil, &model.ConfigError{Vendor: cloudVendor}
	}

	opts := req.Options
	if op == model.CloudResize && positive(opts.Width) == 0 && positive(opts.Height) == 0 {
		return nil, model.ErrMissingDimensions
	}
	if op == model.CloudLifestyle && s.projectID == "" {
		return nil, &model.ConfigError{Vendor: vertexVendor}
	}

	content, size, err := s.inlineContent(ctx, req.ImageReference)
	if err != nil {
		return nil, err
	}

	res := &model.CloudOperation{
		Envelope:  model.NewEnvelope(model.KindCloudOperation),
		Operation: op,
		ResultURL: content,
	}

	switch op {
	case model.CloudResize:
		if err := s.imageProperties(ctx, content); err != nil {
			return nil, vendorFailure(ctx, "Resize analysis failed", err)
		}
		res.OriginalSize = size
		res.Dimensions = map[string]any{
			"width":  dimensionOrAuto(opts.Width),
			"height": dimensionOrAuto(opts.Height),
		}
		res.MaintainAspectRatio = opts.MaintainAspectRatio
		res.Message = resizeMessage

	case model.CloudCompress:
		if err := s.imageProperties(ctx, content); err != nil {
			return nil, vendorFailure(ctx, "Compression analysis failed", err)
		}
		quality := defaultQuality
		if opts.Quality != nil {
			quality = *opts.Quality
		}
		format := strings.ToLower(strings.TrimSpace(opts.Format))
		if format == "" {
			format = defaultFormat
		}
		estimated := estimateCompressed(size, quality, format)

		res.OriginalSize = size
		res.NewSize = estimated
		res.Quality = quality
		res.Format = format
		res.Savings = savings(size, estimated)
		res.Message = compressMessage

	case model.CloudLifestyle:
		res.Prompt = strings.TrimSpace(opts.Prompt)
		if res.Prompt == "" {
			res.Prompt = defaultPrompt
		}
		res.Style = strings.TrimSpace(opts.Style)
		if res.Style == "" {
			res.Style = defaultStyle
		}
		res.Message = lifestyleMsg
	}

	return res, nil
}

// inlineContent returns the image as a data-URL and its decoded size, downloading URLs first.
func (s *ImageService) inlineContent(ctx context.Context, img model.ImageReference) (string, int, error) {
	content := img.Base64
	if !img.IsInline() {
		b, ctype, err := provider.Fetch(ctx, s.http, img.URL)
		if err != nil {
			return "", 0, vendorFailure(ctx, "Failed to download image", err)
		}
		content = provider.EncodeDataURL(ctype, b)
	}

	data, err := provider.ParseDataURL(content)
	if err != nil {
		return "", 0, model.ErrIncorrectBase64
	}
	raw, err := data.Decode()
	if err != nil {
		return "", 0, model.ErrIncorrectBase64
	}
	return data.String(), len(raw), nil
}

func (s *ImageService) imageProperties(ctx context.Context, content string) error {
	_, err := s.vision.Annotate(ctx, model.ImageReference{Base64: content}, []string{vision.FeatureImageProperties})
	return err
}

func estimateCompressed(size, quality int, format string) int {
	factor, ok := compressionFactor[format]
	if !ok {
		factor = 1
	}
	return int(math.Round(float64(size) * float64(quality) / 100 * factor))
}

func savings(original, estimated int) string {
	if original <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round((1-float64(estimated)/float64(original))*100)))
}

func positive(v *int) int {
	if v == nil || *v <= 0 {
		return 0
	}
	return *v
}

func dimensionOrAuto(v *int) any {
	if n := positive(v); n > 0 {
		return n
	}
	return "auto"
}
