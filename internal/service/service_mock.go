package service

import (
	"context"
	"io"

	"imagecatalog/internal/model"

	"github.com/wb-go/wbf/retry"
)

// MOCK REPOSITORY

type mockRepo struct {
	createImageFn     func(ctx context.Context, img *model.Image) error
	getImageFn        func(ctx context.Context, id int64) (*model.Image, error)
	listImagesFn      func(ctx context.Context, req *model.ListRequest) ([]model.Image, error)
	listGalleryFn     func(ctx context.Context) ([]model.Image, error)
	deleteImageFn     func(ctx context.Context, id int64) error
	createProcessedFn func(ctx context.Context, p *model.ProcessedImage) error
	getProcessedFn    func(ctx context.Context, id int64) (*model.ProcessedImage, error)
	listProcessedFn   func(ctx context.Context, imageID int64) ([]model.ProcessedImage, error)
	updateProcessedFn func(ctx context.Context, id int64, fields map[string]any) error
	deleteProcessedFn func(ctx context.Context, imageID int64) error
	fetchStaleFn      func(ctx context.Context, limit int) ([]model.Task, error)
}

func (m *mockRepo) CreateImage(ctx context.Context, img *model.Image) error {
	return m.createImageFn(ctx, img)
}

func (m *mockRepo) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	return m.getImageFn(ctx, id)
}

func (m *mockRepo) ListImages(ctx context.Context, req *model.ListRequest) ([]model.Image, error) {
	return m.listImagesFn(ctx, req)
}

func (m *mockRepo) ListGallery(ctx context.Context) ([]model.Image, error) {
	return m.listGalleryFn(ctx)
}

func (m *mockRepo) DeleteImage(ctx context.Context, id int64) error {
	return m.deleteImageFn(ctx, id)
}

func (m *mockRepo) CreateProcessed(ctx context.Context, p *model.ProcessedImage) error {
	return m.createProcessedFn(ctx, p)
}

func (m *mockRepo) GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error) {
	return m.getProcessedFn(ctx, id)
}

func (m *mockRepo) ListProcessedByImage(ctx context.Context, imageID int64) ([]model.ProcessedImage, error) {
	return m.listProcessedFn(ctx, imageID)
}

func (m *mockRepo) UpdateProcessed(ctx context.Context, id int64, fields map[string]any) error {
	return m.updateProcessedFn(ctx, id, fields)
}

func (m *mockRepo) DeleteProcessedByImage(ctx context.Context, imageID int64) error {
	return m.deleteProcessedFn(ctx, imageID)
}

func (m *mockRepo) FetchStaleTasks(ctx context.Context, limit int) ([]model.Task, error) {
	return m.fetchStaleFn(ctx, limit)
}

// MOCK STORAGE

type mockStorage struct {
	putFn    func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	getFn    func(ctx context.Context, key string) (io.ReadCloser, string, error)
	deleteFn func(ctx context.Context, key string) error
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, key)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.deleteFn(ctx, key)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
