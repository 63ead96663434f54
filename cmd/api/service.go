package main

import (
	"context"

	"imagecatalog/internal/model"
)

type CatalogAPIService interface {
	Upload(ctx context.Context, req *model.UploadRequest) (*model.Image, error)
	Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessedImage, error)
	UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
	List(ctx context.Context, req *model.ListRequest) ([]model.ImageWithProcessed, error)
	Get(ctx context.Context, id int64) (*model.ImageWithProcessed, error)
	Gallery(ctx context.Context) ([]model.ImageWithProcessed, error)
	Download(ctx context.Context, imageID, processedID *int64) (*model.DownloadResponse, error)
	Delete(ctx context.Context, id int64) error
	RequeueStale(ctx context.Context, limit int)
}
