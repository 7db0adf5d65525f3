package transport

import (
	"context"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/gin-gonic/gin"
)

type mockImageService struct {
	removeBackgroundFn func(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error)
	reconstruct3DFn    func(ctx context.Context, img model.ImageReference) (*model.Model3D, error)
	model3DStatusFn    func(ctx context.Context, taskID string) (*model.Model3D, error)
	detectLabelsFn     func(ctx context.Context, req model.VisionRequest) (*model.VisionLabels, error)
	cloudOperationFn   func(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error)
	enhanceFn          func(ctx context.Context, req model.EnhanceRequest) (*model.Enhancement, error)
	validateCDNFn      func(ctx context.Context, req model.ValidateRequest) (*model.Validation, error)
	searchProductsFn   func(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error)
	infoFn             func() model.ServiceInfo
}

func (m *mockImageService) RemoveBackground(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error) {
	return m.removeBackgroundFn(ctx, img)
}

func (m *mockImageService) Reconstruct3D(ctx context.Context, img model.ImageReference) (*model.Model3D, error) {
	return m.reconstruct3DFn(ctx, img)
}

func (m *mockImageService) Model3DStatus(ctx context.Context, taskID string) (*model.Model3D, error) {
	return m.model3DStatusFn(ctx, taskID)
}

func (m *mockImageService) DetectLabels(ctx context.Context, req model.VisionRequest) (*model.VisionLabels, error) {
	return m.detectLabelsFn(ctx, req)
}

func (m *mockImageService) CloudOperation(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error) {
	return m.cloudOperationFn(ctx, req)
}

func (m *mockImageService) Enhance(ctx context.Context, req model.EnhanceRequest) (*model.Enhancement, error) {
	return m.enhanceFn(ctx, req)
}

func (m *mockImageService) ValidateCDN(ctx context.Context, req model.ValidateRequest) (*model.Validation, error) {
	return m.validateCDNFn(ctx, req)
}

func (m *mockImageService) SearchProducts(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error) {
	return m.searchProductsFn(ctx, img)
}

func (m *mockImageService) ProductSearchInfo() model.ServiceInfo {
	return m.infoFn()
}

func init() {
	gin.SetMode(gin.TestMode)
}
