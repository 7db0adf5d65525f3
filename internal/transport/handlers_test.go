package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/provider/claid"
	"github.com/UnendingLoop/ImageLab/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestImageHandler_Ping(t *testing.T) {
	r := gin.New()
	h := NewImageHandler(nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestImageHandler_RemoveBackground(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		mock       *mockImageService
		wantStatus int
		wantError  string
	}{
		{
			name: "success",
			body: map[string]string{"imageUrl": "https://x/img.jpg"},
			mock: &mockImageService{
				removeBackgroundFn: func(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error) {
					require.Equal(t, "https://x/img.jpg", img.URL)
					return &model.BackgroundRemoval{Envelope: model.NewEnvelope(model.KindBackgroundRemoval), ResultURL: "data:image/png;base64,AA=="}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "broken json",
			body:       "{",
			mock:       &mockImageService{},
			wantStatus: 400,
			wantError:  "invalid JSON body",
		},
		{
			name: "missing image",
			body: map[string]string{},
			mock: &mockImageService{
				removeBackgroundFn: func(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error) {
					return nil, model.ErrEmptyImage
				},
			},
			wantStatus: 400,
			wantError:  model.ErrEmptyImage.Error(),
		},
		{
			name: "not configured",
			body: map[string]string{"imageUrl": "https://x/img.jpg"},
			mock: &mockImageService{
				removeBackgroundFn: func(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error) {
					return nil, &model.ConfigError{Vendor: "Remove.bg"}
				},
			},
			wantStatus: 500,
			wantError:  "Remove.bg API credentials not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewImageHandler(tt.mock)

			r.POST("/api/remove-bg", func(c *gin.Context) {
				h.RemoveBackground((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/remove-bg", tt.body))

			require.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			if tt.wantError != "" {
				require.Equal(t, false, body["success"])
				require.Equal(t, tt.wantError, body["error"])
				return
			}
			require.Equal(t, true, body["success"])
			require.Equal(t, string(model.KindBackgroundRemoval), body["kind"])
		})
	}
}

func TestImageHandler_Reconstruct3D_Pending(t *testing.T) {
	r := gin.New()
	h := NewImageHandler(&mockImageService{
		reconstruct3DFn: func(ctx context.Context, img model.ImageReference) (*model.Model3D, error) {
			return &model.Model3D{
				Envelope: model.NewEnvelope(model.KindModel3D),
				TaskID:   "task-1",
				Status:   model.JobPending,
				Message:  "Task is still processing. Use the task ID to check status.",
			}, nil
		},
	})
	r.POST("/api/meshy", func(c *gin.Context) {
		h.Reconstruct3D((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/meshy", map[string]string{"imageUrl": "https://x/img.jpg"}))

	require.Equal(t, 200, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "PENDING", body["status"])
	require.Equal(t, "task-1", body["taskId"])
}

func TestImageHandler_Model3DStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "pending", err: nil, wantStatus: 200},
		{name: "failed job", err: fmt.Errorf("Meshy %w", model.ErrJobFailed), wantStatus: 500},
		{name: "unknown task", err: &model.UpstreamError{Vendor: "Meshy", Status: 404, Message: "Task not found"}, wantStatus: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewImageHandler(&mockImageService{
				model3DStatusFn: func(ctx context.Context, taskID string) (*model.Model3D, error) {
					require.Equal(t, "abc", taskID)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Model3D{Envelope: model.NewEnvelope(model.KindModel3D), TaskID: taskID, Status: model.JobPending}, nil
				},
			})
			r.GET("/api/meshy/:taskId", func(c *gin.Context) {
				h.Model3DStatus((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meshy/abc", nil))
			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestImageHandler_SearchProducts_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{
			name:       "invalid key",
			err:        &model.UpstreamError{Vendor: "SerpAPI", Status: 401, Message: "Invalid API key"},
			wantStatus: 401, wantError: "SerpAPI API error: Invalid API key",
			wantDetails: "Please check your API key configuration.",
		},
		{
			name:       "quota",
			err:        &model.UpstreamError{Vendor: "SerpAPI", Status: 429, Message: "monthly quota exceeded"},
			wantStatus: 429, wantError: "SerpAPI API error: monthly quota exceeded",
			wantDetails: "You may have exceeded your API request limit.",
		},
		{
			name:       "timeout",
			err:        fmt.Errorf("SerpAPI: %w", model.ErrVendorTimeout),
			wantStatus: 500, wantError: "Request timeout",
			wantDetails: "The image processing service took too long to respond.",
		},
		{
			name:       "vendor 503",
			err:        &model.UpstreamError{Vendor: "SerpAPI", Status: 503, Message: "unavailable"},
			wantStatus: 500, wantError: "SerpAPI API error: unavailable",
		},
		{
			name:       "internal",
			err:        fmt.Errorf("%w: %s", model.ErrCommon500, "relay is down"),
			wantStatus: 500, wantError: model.ErrCommon500.Error(),
			wantDetails: "relay is down",
		},
		{
			name:       "bad url",
			err:        model.ErrIncorrectURL,
			wantStatus: 400, wantError: model.ErrIncorrectURL.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewImageHandler(&mockImageService{
				searchProductsFn: func(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error) {
					return nil, tt.err
				},
			})
			r.POST("/api/product-recognition", func(c *gin.Context) {
				h.SearchProducts((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/product-recognition", map[string]string{"imageUrl": "https://x/img.jpg"}))

			require.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			require.Equal(t, false, body["success"])
			require.Equal(t, tt.wantError, body["error"])
			if tt.wantDetails != "" {
				require.Equal(t, tt.wantDetails, body["details"])
			}
		})
	}
}

func TestImageHandler_ValidateCDN_NotFound(t *testing.T) {
	r := gin.New()
	h := NewImageHandler(&mockImageService{
		validateCDNFn: func(ctx context.Context, req model.ValidateRequest) (*model.Validation, error) {
			require.Equal(t, "remove", req.Operations.Background)
			require.Equal(t, model.FlexString("80"), req.Operations.Quality)
			return nil, fmt.Errorf("%w: %w", model.ErrAssetNotFound, &model.UpstreamError{Vendor: "Cloudinary", Status: 500})
		},
	})
	r.POST("/api/cloudinary-validate", func(c *gin.Context) {
		h.ValidateCDN((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/cloudinary-validate",
		`{"imageUrl":"https://res.cloudinary.com/demo/image/upload/x.jpg","operations":{"background":"remove","quality":80}}`))

	require.Equal(t, 404, w.Code)
}

func TestImageHandler_ProductSearchInfo(t *testing.T) {
	r := gin.New()
	h := NewImageHandler(&mockImageService{
		infoFn: func() model.ServiceInfo {
			return model.ServiceInfo{Service: "Product Recognition API", Status: "Configured"}
		},
	})
	r.GET("/api/product-recognition", func(c *gin.Context) {
		h.ProductSearchInfo((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/product-recognition", nil))

	require.Equal(t, 200, w.Code)
	require.Equal(t, "Configured", decodeBody(t, w)["status"])
}

func TestImageHandler_CloudOperation_BindsOptions(t *testing.T) {
	r := gin.New()
	h := NewImageHandler(&mockImageService{
		cloudOperationFn: func(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error) {
			require.Equal(t, "resize", req.Operation)
			require.NotNil(t, req.Options.Width)
			require.Equal(t, 640, *req.Options.Width)
			require.Nil(t, req.Options.Height)
			return &model.CloudOperation{Envelope: model.NewEnvelope(model.KindCloudOperation), Operation: "resize"}, nil
		},
	})
	r.POST("/api/google-cloud", func(c *gin.Context) {
		h.CloudOperation((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/google-cloud",
		`{"imageBase64":"data:image/png;base64,AA==","operation":"resize","options":{"width":640}}`))

	require.Equal(t, 200, w.Code)
}

// Полный путь: handler -> service -> claid-клиент -> фейковый вендор
func TestEnhance_EndToEnd(t *testing.T) {
	var forwarded map[string]any

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1/image/edit", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &forwarded))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"data":{"input":{"mps":1},"output":{"tmp_url":"%s/tmp/out.png","format":"png","width":1000,"height":1000,"mps":1}}}`, srv.URL)
	})
	mux.HandleFunc("/tmp/out.png", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
	})

	svc := service.NewImageService(service.Deps{
		Editor: claid.New("test-key", claid.WithBaseURL(srv.URL), claid.WithHTTPClient(srv.Client())),
		HTTP:   srv.Client(),
	})
	h := NewImageHandler(svc)

	r := gin.New()
	r.POST("/api/claid", func(c *gin.Context) {
		h.Enhance((*ginext.Context)(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, newJSONRequest(t, http.MethodPost, "/api/claid",
		`{"imageUrl":"https://x/img.jpg","operations":{"adjustments":{"hdr":0.4}},"output":{"format":"png"}}`))

	require.Equal(t, 200, w.Code)

	ops := forwarded["operations"].(map[string]any)
	adj := ops["adjustments"].(map[string]any)
	require.Equal(t, float64(0), adj["hdr"])
	require.Equal(t, "png", forwarded["output"].(map[string]any)["format"])
	require.Equal(t, "https://x/img.jpg", forwarded["input"])

	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, srv.URL+"/tmp/out.png", body["resultUrl"])
	validation := body["validation"].(map[string]any)
	require.Equal(t, true, validation["compliance"].(map[string]any)["passed"])
}
