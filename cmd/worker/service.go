package main

import (
	"context"

	"imagecatalog/internal/model"
)

type CatalogWorkerService interface {
	GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error)
	UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
}
