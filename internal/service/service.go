// Package service provides business-logic for the app
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"imagecatalog/internal/model"
	"imagecatalog/internal/mwlogger"
	"imagecatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

type CatalogService struct {
	repo            repository.CatalogRepo
	publisher       TaskPublisher
	storage         BlobStorage
	srcKeyPrefix    string
	resultKeyPrefix string
}

func NewCatalogService(rep repository.CatalogRepo, pub TaskPublisher, strg BlobStorage, srcPrefix, resPrefix string) *CatalogService {
	return &CatalogService{
		repo:            rep,
		publisher:       pub,
		storage:         strg,
		srcKeyPrefix:    srcPrefix,
		resultKeyPrefix: resPrefix,
	}
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// BlobStorage - контракт для работы с хранилищем
type BlobStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (c CatalogService) Upload(ctx context.Context, req *model.UploadRequest) (*model.Image, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	// декодируем тело - размер считаем сами, клиенту не верим
	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		return nil, model.ErrBadFileData
	}

	// ключ хранения не совпадает с display-именем - иначе коллизии
	key := c.srcKeyPrefix + uuid.New().String() + storageExt(req.Filename, req.MimeType)

	if err := c.storage.Put(ctx, key, int64(len(data)), req.MimeType, bytes.NewReader(data)); err != nil {
		logger.Error().Err(err).Msg("Failed to save uploaded image in Storage")
		return nil, model.ErrStorageIO
	}

	newImage := &model.Image{
		Filename:     req.Filename,
		OriginalPath: key,
		FileSize:     int64(len(data)),
		MimeType:     req.MimeType,
		Width:        req.Width,
		Height:       req.Height,
	}

	// шлем в базу; блоб при фейле остается сиротой - принято, см. DESIGN.md
	if err := c.repo.CreateImage(ctx, newImage); err != nil {
		logger.Error().Err(err).Msg("Failed to create image in DB")
		return nil, model.ErrCommon500
	}

	return newImage, nil
}

func (c CatalogService) Process(ctx context.Context, req *model.ProcessRequest) (*model.ProcessedImage, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	img, err := c.repo.GetImage(ctx, req.ImageID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return nil, model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %d from DB", req.ImageID))
			return nil, model.ErrCommon500
		}
	}

	pType := req.Type
	if pType == "" {
		pType = model.DefaultProcessingType
	}

	newProcessed := &model.ProcessedImage{
		OriginalImageID: req.ImageID,
		ProcessedPath:   "",
		Status:          model.StatusPending,
		Type:            pType,
	}

	if err := c.repo.CreateProcessed(ctx, newProcessed); err != nil {
		logger.Error().Err(err).Msg("Failed to create processed-image in DB")
		return nil, model.ErrCommon500
	}

	// уведомление обработчиков - best-effort: запись уже есть,
	// зависшую задачу переотправит requeue-цикл
	task := model.Task{
		ProcessedImageID: newProcessed.ID,
		ImageID:          img.ID,
		Type:             pType,
		SourcePath:       img.OriginalPath,
	}
	c.publishTask(ctx, &task)

	return newProcessed, nil
}

func (c CatalogService) UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if !model.StatusMap[req.Status] {
		return nil, model.ErrIncorrectStatus
	}

	// fetch-then-update: отсутствие записи - 404 до любых изменений
	if _, err := c.repo.GetProcessed(ctx, req.ProcessedImageID); err != nil {
		switch {
		case errors.Is(err, model.ErrProcessedNotFound):
			return nil, model.ErrProcessedNotFound
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-image %d from DB", req.ProcessedImageID))
			return nil, model.ErrCommon500
		}
	}

	// только явно переданные поля попадают в обновление
	fields := map[string]any{
		"processing_status": req.Status,
	}
	if req.ProcessedPath != nil {
		fields["processed_path"] = *req.ProcessedPath
	}
	if req.FileSize != nil {
		fields["file_size"] = *req.FileSize
	}
	if req.Width != nil {
		fields["width"] = *req.Width
	}
	if req.Height != nil {
		fields["height"] = *req.Height
	}
	if req.ErrMsg.Set {
		// явный null стирает прежнюю ошибку, пропуск поля - сохраняет
		if req.ErrMsg.Value != nil {
			fields["error_message"] = *req.ErrMsg.Value
		} else {
			fields["error_message"] = nil
		}
	}
	// processed_at ставится только при переходе в completed и никогда не чистится
	if req.Status == model.StatusCompleted {
		fields["processed_at"] = time.Now().UTC()
	}

	if err := c.repo.UpdateProcessed(ctx, req.ProcessedImageID, fields); err != nil {
		switch {
		case errors.Is(err, model.ErrProcessedNotFound):
			return nil, model.ErrProcessedNotFound
		default:
			logger.Error().Err(err).Msg("Failed to update processed-image in DB")
			return nil, model.ErrCommon500
		}
	}

	updated, err := c.repo.GetProcessed(ctx, req.ProcessedImageID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to re-fetch processed-image after update")
		return nil, model.ErrCommon500
	}
	return updated, nil
}

// GetProcessed - прямое чтение одной записи обработки, используется воркером
func (c CatalogService) GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	pi, err := c.repo.GetProcessed(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProcessedNotFound):
			return nil, model.ErrProcessedNotFound
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-image %d from DB", id))
			return nil, model.ErrCommon500
		}
	}
	return pi, nil
}

func (c CatalogService) List(ctx context.Context, req *model.ListRequest) ([]model.ImageWithProcessed, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := normalizeListParams(req); err != nil {
		return nil, err
	}

	images, err := c.repo.ListImages(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch images list from DB")
		return nil, model.ErrCommon500
	}

	res := make([]model.ImageWithProcessed, 0, len(images))
	for _, img := range images {
		item := model.ImageWithProcessed{Image: img}
		if *req.IncludeProcessed {
			// фильтр по статусу отбирает картинки, но варианты отдаются все
			deps, err := c.repo.ListProcessedByImage(ctx, img.ID)
			if err != nil {
				logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-images for image %d", img.ID))
				return nil, model.ErrCommon500
			}
			item.Processed = deps
		}
		res = append(res, item)
	}

	return res, nil
}

// Get возвращает (nil, nil) для несуществующего id: отсутствие - не ошибка на этом пути
func (c CatalogService) Get(ctx context.Context, id int64) (*model.ImageWithProcessed, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	img, err := c.repo.GetImage(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return nil, nil
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %d from DB", id))
			return nil, model.ErrCommon500
		}
	}

	deps, err := c.repo.ListProcessedByImage(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-images for image %d", id))
		return nil, model.ErrCommon500
	}

	return &model.ImageWithProcessed{Image: *img, Processed: deps}, nil
}

func (c CatalogService) Gallery(ctx context.Context) ([]model.ImageWithProcessed, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	images, err := c.repo.ListGallery(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch gallery from DB")
		return nil, model.ErrCommon500
	}

	res := make([]model.ImageWithProcessed, 0, len(images))
	for _, img := range images {
		deps, err := c.repo.ListProcessedByImage(ctx, img.ID)
		if err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-images for image %d", img.ID))
			return nil, model.ErrCommon500
		}
		res = append(res, model.ImageWithProcessed{Image: img, Processed: deps})
	}

	return res, nil
}

func (c CatalogService) Download(ctx context.Context, imageID, processedID *int64) (*model.DownloadResponse, error) {
	switch {
	case imageID != nil && processedID == nil:
		return c.downloadOriginal(ctx, *imageID)
	case processedID != nil && imageID == nil:
		return c.downloadProcessed(ctx, *processedID)
	default:
		return nil, model.ErrDownloadTarget
	}
}

func (c CatalogService) downloadOriginal(ctx context.Context, id int64) (*model.DownloadResponse, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	img, err := c.repo.GetImage(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return nil, model.ErrImageNotFound
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %d from DB", id))
			return nil, model.ErrCommon500
		}
	}

	data, err := c.readBlob(ctx, img.OriginalPath)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch original %q from Storage", img.OriginalPath))
		return nil, model.ErrStorageIO
	}

	return &model.DownloadResponse{
		Filename: img.Filename,
		FileData: base64.StdEncoding.EncodeToString(data),
		MimeType: img.MimeType,
		FileSize: img.FileSize,
	}, nil
}

func (c CatalogService) downloadProcessed(ctx context.Context, id int64) (*model.DownloadResponse, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	pi, err := c.repo.GetProcessed(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrProcessedNotFound):
			return nil, model.ErrProcessedNotFound
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-image %d from DB", id))
			return nil, model.ErrCommon500
		}
	}

	owner, err := c.repo.GetImage(ctx, pi.OriginalImageID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			// битая ссылка на владельца - отдельная ошибка, это не обычный 404
			logger.Error().Msg(fmt.Sprintf("Processed-image %d references missing image %d", pi.ID, pi.OriginalImageID))
			return nil, model.ErrBrokenOwnerLink
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch owner image %d from DB", pi.OriginalImageID))
			return nil, model.ErrCommon500
		}
	}

	var size int64
	if pi.FileSize != nil {
		size = *pi.FileSize
	}

	// пустой processed_path до завершения обработки - чтение честно упадет
	data, err := c.readBlob(ctx, pi.ProcessedPath)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed result %q from Storage", pi.ProcessedPath))
		return nil, model.ErrStorageIO
	}

	return &model.DownloadResponse{
		Filename: downloadName(owner.Filename, pi.Type),
		FileData: base64.StdEncoding.EncodeToString(data),
		MimeType: owner.MimeType, // формат результата считаем тем же, без пере-детекции
		FileSize: size,
	}, nil
}

func (c CatalogService) Delete(ctx context.Context, id int64) error {
	logger := mwlogger.LoggerFromContext(ctx)

	img, err := c.repo.GetImage(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return model.ErrImageNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %d from DB", id))
			return model.ErrCommon500
		}
	}

	deps, err := c.repo.ListProcessedByImage(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch processed-images for image %d", id))
		return model.ErrCommon500
	}

	// сначала зависимые строки, потом владелец - иначе нарушим FK
	if err := c.repo.DeleteProcessedByImage(ctx, id); err != nil {
		logger.Error().Err(err).Msg("Failed to delete processed-images from DB")
		return model.ErrCommon500
	}
	if err := c.repo.DeleteImage(ctx, id); err != nil {
		switch {
		case errors.Is(err, model.ErrImageNotFound):
			return model.ErrImageNotFound
		default:
			logger.Error().Err(err).Msg("Failed to delete image from DB")
			return model.ErrCommon500
		}
	}

	// блобы чистим best-effort: запись уже удалена, ошибки только логируем
	if err := c.storage.Delete(ctx, img.OriginalPath); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete original blob %q", img.OriginalPath))
	}
	for _, d := range deps {
		if d.ProcessedPath == "" {
			continue
		}
		if err := c.storage.Delete(ctx, d.ProcessedPath); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete processed blob %q", d.ProcessedPath))
		}
	}

	return nil
}

// RequeueStale переотправляет в очередь задачи, зависшие в pending/processing
func (c CatalogService) RequeueStale(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	tasks, err := c.repo.FetchStaleTasks(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load stale tasks from DB")
		return
	}

	for i := range tasks {
		c.publishTask(ctx, &tasks[i])
	}
}

func (c CatalogService) publishTask(ctx context.Context, task *model.Task) {
	logger := mwlogger.LoggerFromContext(ctx)

	payload, err := json.Marshal(task)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to marshal task %d", task.ProcessedImageID))
		return
	}

	key := []byte(strconv.FormatInt(task.ProcessedImageID, 10))
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, key, payload); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish task %d to queue", task.ProcessedImageID))
	}
}

func (c CatalogService) readBlob(ctx context.Context, key string) ([]byte, error) {
	res, _, err := c.storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger := mwlogger.LoggerFromContext(ctx)
			logger.Error().Err(err).Msg("Failed to close blob reader")
		}
	}()

	return io.ReadAll(res)
}
