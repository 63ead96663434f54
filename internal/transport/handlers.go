// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"strconv"

	"imagecatalog/internal/model"

	"github.com/wb-go/wbf/ginext"
)

type CatalogHandler struct {
	service CatalogService
}

type CatalogService interface {
	Upload(ctx context.Context, req *model.UploadRequest) (*model.Image, error)
	Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessedImage, error)
	UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
	List(ctx context.Context, req *model.ListRequest) ([]model.ImageWithProcessed, error)
	Get(ctx context.Context, id int64) (*model.ImageWithProcessed, error)
	Gallery(ctx context.Context) ([]model.ImageWithProcessed, error)
	Download(ctx context.Context, imageID, processedID *int64) (*model.DownloadResponse, error)
	Delete(ctx context.Context, id int64) error
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
	}
}

func (h CatalogHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h CatalogHandler) Upload(ctx *ginext.Context) {
	var req model.UploadRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse request body"})
		return
	}

	if req.Filename == "" || req.FileData == "" || req.MimeType == "" {
		ctx.JSON(400, map[string]string{"error": "filename, file_data and mime_type are required"})
		return
	}

	res, err := h.service.Upload(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h CatalogHandler) Process(ctx *ginext.Context) {
	var req model.ProcessRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse request body"})
		return
	}

	if req.ImageID <= 0 {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectID.Error()})
		return
	}

	res, err := h.service.Process(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h CatalogHandler) UpdateStatus(ctx *ginext.Context) {
	var req model.StatusUpdateRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse request body"})
		return
	}

	if req.ProcessedImageID <= 0 {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectID.Error()})
		return
	}

	res, err := h.service.UpdateStatus(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h CatalogHandler) List(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.List(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h CatalogHandler) Get(ctx *ginext.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.service.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	// отсутствие картинки на этом пути - не ошибка, отдаем null
	ctx.JSON(200, res)
}

func (h CatalogHandler) Gallery(ctx *ginext.Context) {
	res, err := h.service.Gallery(ctx.Request.Context())
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h CatalogHandler) Download(ctx *ginext.Context) {
	imageID, err := parseOptionalID(ctx.Query("image_id"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": err.Error()})
		return
	}
	processedID, err := parseOptionalID(ctx.Query("processed_image_id"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.service.Download(ctx.Request.Context(), imageID, processedID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h CatalogHandler) Delete(ctx *ginext.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": err.Error()})
		return
	}

	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]bool{"success": true})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrIncorrectID
	}
	return id, nil
}

func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
