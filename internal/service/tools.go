package service

import (
	"net/url"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider"
	"github.com/samber/lo"
)

const dataImagePrefix = "data:image/"

// validateImage - URL важнее base64, если пришли оба
func validateImage(img *model.ImageReference) error {
	img.URL = strings.TrimSpace(img.URL)
	img.Base64 = strings.TrimSpace(img.Base64)

	if img.IsEmpty() {
		return model.ErrEmptyImage
	}

	if img.URL != "" {
		img.Base64 = ""
		return validateURL(img.URL)
	}

	if _, err := provider.ParseDataURL(img.Base64); err != nil {
		return model.ErrIncorrectBase64
	}
	return nil
}

// validateInline - для загрузки в relay нужен полноценный data:image/...;base64
func validateInline(img model.ImageReference) error {
	if !strings.HasPrefix(img.Base64, dataImagePrefix) {
		return model.ErrIncorrectBase64
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return model.ErrIncorrectURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	default:
		return model.ErrIncorrectURL
	}
}

// normalizeFeatures - верхний регистр, без пустых и дублей; пусто -> дефолтный набор
func normalizeFeatures(in []string, defaults []string) []string {
	out := lo.Uniq(lo.FilterMap(in, func(f string, _ int) (string, bool) {
		f = strings.ToUpper(strings.TrimSpace(f))
		return f, f != ""
	}))
	if len(out) == 0 {
		return append([]string(nil), defaults...)
	}
	return out
}
