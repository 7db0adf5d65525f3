// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type ImageHandler struct {
	service ImageService
}

type ImageService interface {
	RemoveBackground(ctx context.Context, img model.ImageReference) (*model.BackgroundRemoval, error)
	Reconstruct3D(ctx context.Context, img model.ImageReference) (*model.Model3D, error)
	Model3DStatus(ctx context.Context, taskID string) (*model.Model3D, error) // одна проверка, без опроса
	DetectLabels(ctx context.Context, req model.VisionRequest) (*model.VisionLabels, error)
	CloudOperation(ctx context.Context, req model.CloudOperationRequest) (*model.CloudOperation, error)
	Enhance(ctx context.Context, req model.EnhanceRequest) (*model.Enhancement, error)
	ValidateCDN(ctx context.Context, req model.ValidateRequest) (*model.Validation, error)
	SearchProducts(ctx context.Context, img model.ImageReference) (*model.ProductSearch, error)
	ProductSearchInfo() model.ServiceInfo
}

func NewImageHandler(svc ImageService) *ImageHandler {
	return &ImageHandler{
		service: svc,
	}
}

func (h ImageHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h ImageHandler) RemoveBackground(ctx *ginext.Context) {
	var req model.ImageReference
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.RemoveBackground(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) Reconstruct3D(ctx *ginext.Context) {
	var req model.ImageReference
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.Reconstruct3D(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) Model3DStatus(ctx *ginext.Context) {
	res, err := h.service.Model3DStatus(ctx.Request.Context(), ctx.Param("taskId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) DetectLabels(ctx *ginext.Context) {
	var req model.VisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.DetectLabels(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) CloudOperation(ctx *ginext.Context) {
	var req model.CloudOperationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.CloudOperation(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) Enhance(ctx *ginext.Context) {
	var req model.EnhanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.Enhance(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) ValidateCDN(ctx *ginext.Context) {
	var req model.ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.ValidateCDN(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) SearchProducts(ctx *ginext.Context) {
	var req model.ImageReference
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadJSON(ctx)
		return
	}

	res, err := h.service.SearchProducts(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, res)
}

func (h ImageHandler) ProductSearchInfo(ctx *ginext.Context) {
	ctx.JSON(200, h.service.ProductSearchInfo())
}
