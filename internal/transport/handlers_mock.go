package transport

import (
	"context"

	"imagecatalog/internal/model"

	"github.com/gin-gonic/gin"
)

type mockCatalogService struct {
	uploadFn       func(ctx context.Context, req *model.UploadRequest) (*model.Image, error)
	processFn      func(ctx context.Context, req *model.ProcessRequest) (*model.ProcessedImage, error)
	updateStatusFn func(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
	listFn         func(ctx context.Context, req *model.ListRequest) ([]model.ImageWithProcessed, error)
	getFn          func(ctx context.Context, id int64) (*model.ImageWithProcessed, error)
	galleryFn      func(ctx context.Context) ([]model.ImageWithProcessed, error)
	downloadFn     func(ctx context.Context, imageID, processedID *int64) (*model.DownloadResponse, error)
	deleteFn       func(ctx context.Context, id int64) error
}

func (m *mockCatalogService) Upload(ctx context.Context, req *model.UploadRequest) (*model.Image, error) {
	return m.uploadFn(ctx, req)
}

func (m *mockCatalogService) Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessedImage, error) {
	return m.processFn(ctx, req)
}

func (m *mockCatalogService) UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error) {
	return m.updateStatusFn(ctx, req)
}

func (m *mockCatalogService) List(ctx context.Context, req *model.ListRequest) ([]model.ImageWithProcessed, error) {
	return m.listFn(ctx, req)
}

func (m *mockCatalogService) Get(ctx context.Context, id int64) (*model.ImageWithProcessed, error) {
	return m.getFn(ctx, id)
}

func (m *mockCatalogService) Gallery(ctx context.Context) ([]model.ImageWithProcessed, error) {
	return m.galleryFn(ctx)
}

func (m *mockCatalogService) Download(ctx context.Context, imageID, processedID *int64) (*model.DownloadResponse, error) {
	return m.downloadFn(ctx, imageID, processedID)
}

func (m *mockCatalogService) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func init() {
	gin.SetMode(gin.TestMode)
}
