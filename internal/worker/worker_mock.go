package worker

import (
	"context"
	"io"

	"imagecatalog/internal/model"
)

type mockWorkerService struct {
	getProcessedFn func(ctx context.Context, id int64) (*model.ProcessedImage, error)
	updateStatusFn func(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
}

func (m *mockWorkerService) GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error) {
	return m.getProcessedFn(ctx, id)
}

func (m *mockWorkerService) UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error) {
	return m.updateStatusFn(ctx, req)
}

//----------------------------------

type mockStorage struct {
	getFn func(ctx context.Context, key string) (io.ReadCloser, string, error)
	putFn func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return nil
}
