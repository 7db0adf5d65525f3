package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider/serpapi"
	"github.com/samber/lo"
)

const productSearchPath = "/api/product-recognition"

var retailMarkers = []string{"amazon", "ebay", "walmart", "shop", "store"}

var commonBrands = []string{
	"Apple", "Samsung", "Nike", "Adidas", "Sony", "Microsoft", "Google",
	"Amazon", "Dell", "HP", "Lenovo", "Asus", "LG", "Canon", "Nikon",
	"Gucci", "Louis Vuitton", "Chanel", "Prada", "Zara", "H&M",
}

// SearchProducts runs a visual search and flattens the matches into labels, logos and offers.
func (s *ImageService) SearchProducts(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error) {
	if err := validateImage(&img); err != nil {
		return nil, err
	}
	if s.search == nil {
		return nil, &model.ConfigError{Vendor: serpapi.Name}
	}

	imageURL, err := s.publicURL(ctx, img)
	if err != nil {
		return nil, err
	}

	res, err := s.search.Lens(ctx, imageURL)
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to run visual search", err)
	}

	out := flattenProducts(res)
	out.SearchMetadata = model.SearchMetadata{
		Status:      lo.Ternary(res.SearchMetadata.Status != "", res.SearchMetadata.Status, "Unknown"),
		ImageURL:    lo.Ternary(img.IsInline(), "Uploaded to asset relay", "Provided URL"),
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return out, nil
}

func flattenProducts(res *serpapi.LensResult) *model.ProductSearch {
	out := &model.ProductSearch{
		Envelope:      model.NewEnvelope(model.KindProductSearch),
		Labels:        make([]model.Label, 0),
		Objects:       make([]model.Label, 0),
		Logos:         make([]model.Label, 0),
		VisualMatches: lo.Ternary(len(res.VisualMatchesRaw) > 0, res.VisualMatchesRaw, json.RawMessage(`[]`)),
		ProductDetails: model.ProductDetails{
			Stores:          make([]model.StoreOffer, 0),
			SimilarProducts: make([]model.SimilarProduct, 0),
		},
	}

	// чем раньше совпадение, тем выше оценка
	for i, m := range res.VisualMatches {
		if m.Title != "" {
			out.Labels = append(out.Labels, model.Label{Description: m.Title, Score: titleScore(i), Source: m.Source})
		}
	}
	titled := lo.Filter(res.VisualMatches, func(m serpapi.VisualMatch, _ int) bool {
		return m.Title != ""
	})

	details := &out.ProductDetails
	primaryFound := false
	for _, m := range lo.Filter(titled, func(m serpapi.VisualMatch, _ int) bool { return isProduct(m) }) {
		price := priceValue(m)

		if !primaryFound {
			primaryFound = true
			details.Title = lo.ToPtr(m.Title)
			details.Price = lo.EmptyableToPtr(price)
			if m.Price != nil {
				details.Currency = lo.EmptyableToPtr(m.Price.Currency)
			}
		} else {
			details.SimilarProducts = append(details.SimilarProducts, model.SimilarProduct{
				Title:     m.Title,
				Source:    m.Source,
				Price:     price,
				Thumbnail: m.Thumbnail,
				Link:      m.Link,
			})
		}

		if m.Source != "" && price != "" {
			details.Stores = append(details.Stores, model.StoreOffer{
				Name:     m.Source,
				Price:    price,
				Link:     m.Link,
				Currency: m.Price.Currency,
			})
		}
	}

	out.Logos = brandLogos(details.Title, titled)

	for _, rc := range res.RelatedContent {
		if len(rc.Query) > 3 {
			out.Labels = append(out.Labels, model.Label{Description: rc.Query, Score: 0.7})
		}
	}
	return out
}

// titleScore - 0.9 минус 0.05 за каждую позицию, не ниже 0.6
func titleScore(index int) float64 {
	score := math.Max(0.9-float64(index)*0.05, 0.6)
	return math.Round(score*100) / 100
}

func isProduct(m serpapi.VisualMatch) bool {
	if m.Price != nil {
		return true
	}
	source := strings.ToLower(m.Source)
	return lo.SomeBy(retailMarkers, func(marker string) bool {
		return strings.Contains(source, marker)
	})
}

func priceValue(m serpapi.VisualMatch) string {
	if m.Price == nil {
		return ""
	}
	return m.Price.Value
}

// brandLogos - бренд из заголовка основного товара 0.9, остальные уникальные бренды 0.8
func brandLogos(primaryTitle *string, matches []serpapi.VisualMatch) []model.Label {
	logos := make([]model.Label, 0)

	if primaryTitle != nil {
		title := strings.ToLower(*primaryTitle)
		if brand, ok := lo.Find(commonBrands, func(b string) bool {
			return strings.Contains(title, strings.ToLower(b))
		}); ok {
			logos = append(logos, model.Label{Description: brand, Score: 0.9})
		}
	}

	for _, m := range matches {
		title := strings.ToLower(m.Title)
		for _, brand := range commonBrands {
			if !strings.Contains(title, strings.ToLower(brand)) {
				continue
			}
			if lo.ContainsBy(logos, func(l model.Label) bool { return l.Description == brand }) {
				continue
			}
			logos = append(logos, model.Label{Description: brand, Score: 0.8})
		}
	}
	return logos
}

// ProductSearchInfo reports whether visual search and the relay are configured.
func (s *ImageService) ProductSearchInfo() model.ServiceInfo {
	searchReady := s.search != nil
	relayReady := s.relay != nil
	configured := searchReady && relayReady

	return model.ServiceInfo{
		Service: "Product Recognition API",
		Status:  lo.Ternary(configured, "Configured", "Not fully configured"),
		Endpoints: map[string]any{
			"POST":        productSearchPath,
			"description": "Recognize products from images using Google Lens via SerpAPI",
			"parameters": map[string]string{
				"imageUrl":    "Publicly accessible image URL (optional)",
				"imageBase64": "Base64 data URL (optional, requires asset relay configuration)",
			},
		},
		Configuration: map[string]any{
			"serpapi": searchReady,
			"relay":   relayReady,
			"note":    lo.Ternary(configured, "Ready to process images", "Check your environment variables"),
		},
	}
}
