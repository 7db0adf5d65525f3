package model

import "encoding/json"

const (
	KindBackgroundRemoval ResultKind = "background_removal"
	KindModel3D           ResultKind = "model_3d"
	KindVisionLabels      ResultKind = "vision_labels"
	KindEnhancement       ResultKind = "enhancement"
	KindValidation        ResultKind = "validation"
	KindProductSearch     ResultKind = "product_search"
	KindCloudOperation    ResultKind = "cloud_operation"
)

// Result is the closed set of per-vendor outcomes returned to the caller.
type Result interface {
	Kind() ResultKind
	isResult()
}

// Envelope is embedded by every variant
type Envelope struct {
	Success bool       `json:"success"`
	Type    ResultKind `json:"kind"`
}

func NewEnvelope(kind ResultKind) Envelope {
	return Envelope{Success: true, Type: kind}
}

func (e Envelope) Kind() ResultKind { return e.Type }
func (Envelope) isResult()          {}

type BackgroundRemoval struct {
	Envelope
	ResultURL string `json:"resultUrl"`
}

type Model3D struct {
	Envelope
	TaskID       string    `json:"taskId"`
	Status       JobStatus `json:"status"`
	ModelURL     string    `json:"modelUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Message      string    `json:"message,omitempty"`
	Attempts     int       `json:"attempts,omitempty"`
}

type VisionLabels struct {
	Envelope
	Labels  json.RawMessage `json:"labels"`
	Objects json.RawMessage `json:"objects"`
	Text    json.RawMessage `json:"text"`
	Faces   json.RawMessage `json:"faces"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

type EnhancementMetadata struct {
	OriginalSize float64 `json:"original_size"`
	NewSize      float64 `json:"new_size"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Format       string  `json:"format"`
}

type Enhancement struct {
	Envelope
	ResultURL  string              `json:"resultUrl"`
	Metadata   EnhancementMetadata `json:"metadata"`
	Validation NormalizedResult    `json:"validation"`
}

type Validation struct {
	Envelope
	NormalizedResult
	RawData json.RawMessage `json:"rawData,omitempty"`
}

type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Source      string  `json:"source,omitempty"`
}

type StoreOffer struct {
	Name     string `json:"name"`
	Price    string `json:"price,omitempty"`
	Link     string `json:"link,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type SimilarProduct struct {
	Title     string `json:"title"`
	Source    string `json:"source,omitempty"`
	Price     string `json:"price,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Link      string `json:"link,omitempty"`
}

type ProductDetails struct {
	Title           *string          `json:"title"`
	Price           *string          `json:"price"`
	Currency        *string          `json:"currency"`
	Stores          []StoreOffer     `json:"stores"`
	SimilarProducts []SimilarProduct `json:"similarProducts"`
}

type SearchMetadata struct {
	Status      string `json:"status"`
	ImageURL    string `json:"imageUrl"`
	ProcessedAt string `json:"processedAt"`
}

type ProductSearch struct {
	Envelope
	Labels         []Label         `json:"labels"`
	Objects        []Label         `json:"objects"`
	Logos          []Label         `json:"logos"`
	ProductDetails ProductDetails  `json:"productDetails"`
	VisualMatches  json.RawMessage `json:"visualMatches"`
	SearchMetadata SearchMetadata  `json:"searchMetadata"`
}

type CloudOperation struct {
	Envelope
	Operation           string         `json:"operation"`
	ResultURL           string         `json:"resultUrl"`
	OriginalSize        int            `json:"originalSize,omitempty"`
	NewSize             int            `json:"newSize,omitempty"`
	Dimensions          map[string]any `json:"dimensions,omitempty"`
	MaintainAspectRatio *bool          `json:"maintainAspectRatio,omitempty"`
	Quality             int            `json:"quality,omitempty"`
	Format              string         `json:"format,omitempty"`
	Savings             string         `json:"savings,omitempty"`
	Prompt              string         `json:"prompt,omitempty"`
	Style               string         `json:"style,omitempty"`
	Message             string         `json:"message"`
}

// ServiceInfo - ответ GET-интроспекции для поиска товаров
type ServiceInfo struct {
	Service       string         `json:"service"`
	Status        string         `json:"status"`
	Endpoints     map[string]any `json:"endpoints"`
	Configuration map[string]any `json:"configuration"`
}
