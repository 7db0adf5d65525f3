package main

import (
	"context"

	"github.com/UnendingLoop/ImageLab/internal/model"
)

// ImageAPIService - все операции, которые отдаются наружу через HTTP
type ImageAPIService interface {
	RemoveBackground(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error)
	Reconstruct3D(ctx context.Context, img model.ImageReference) (*model.Model3D, error)
	Model3DStatus(ctx context.Context, taskID string) (*model.Model3D, error)
	DetectLabels(ctx context.Context, req model.VisionRequest) (*model.VisionLabels, error)
	CloudOperation(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error)
	Enhance(ctx context.Context, req model.EnhanceRequest) (*model.Enhancement, error)
	ValidateCDN(ctx context.Context, req model.ValidateRequest) (*model.Validation, error)
	SearchProducts(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error)
	ProductSearchInfo() model.ServiceInfo
}
