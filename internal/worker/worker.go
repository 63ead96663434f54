// Package worker contains the built-in processing backend: it consumes queued
// tasks and drives them through the status lifecycle
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"imagecatalog/internal/imageproc"
	"imagecatalog/internal/model"
	"imagecatalog/internal/service"

	"github.com/disintegration/imaging"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// NoopPublisher - ЗАГЛУШКА, функциональность настоящего паблишера в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error {
	return nil
}

type CatalogWorkerService interface {
	GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error)
	UpdateStatus(ctx context.Context, req *model.StatusUpdateRequest) (*model.ProcessedImage, error)
}

// операции которые воркер умеет выполнять сам; остальные типы (например
// background_removal) обрабатывает внешний бекенд со своей consumer-group
var supportedOps = map[string]bool{
	"resize":    true,
	"thumbnail": true,
	"grayscale": true,
}

const (
	resizeWidth   = 1024
	thumbnailSide = 256
)

type Worker struct {
	storage      service.BlobStorage
	service      CatalogWorkerService
	queue        <-chan kafkago.Message
	consumer     *wbfkafka.Consumer
	resultPrefix string
}

func NewWorkerInstance(strg service.BlobStorage, svc CatalogWorkerService, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr string) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, resultPrefix: resPr}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			if err := w.handleTask(ctx, msg.Value); err != nil {
				log.Printf("Task %s failed: %v", string(msg.Key), err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) handleTask(ctx context.Context, payload []byte) error {
	var task model.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return fmt.Errorf("worker failed to unmarshal task: %w", err)
	}

	// чужой тип - пропускаем и коммитим, задача не наша
	if !supportedOps[task.Type] {
		return nil
	}

	// считать из базы задачу и проверить статус
	current, err := w.service.GetProcessed(ctx, task.ProcessedImageID)
	if err != nil {
		if errors.Is(err, model.ErrProcessedNotFound) {
			// запись удалили пока задача лежала в очереди
			return nil
		}
		return fmt.Errorf("worker failed to fetch processed-image %d from DB: %w", task.ProcessedImageID, err)
	}

	switch current.Status {
	case model.StatusCompleted:
		return nil
	case model.StatusProcessing:
		return fmt.Errorf("task %d already in progress", task.ProcessedImageID)
	}

	// обновить статус
	if _, err := w.service.UpdateStatus(ctx, &model.StatusUpdateRequest{
		ProcessedImageID: task.ProcessedImageID,
		Status:           model.StatusProcessing,
	}); err != nil {
		return fmt.Errorf("failed to update status of task %d to `processing` in DB: %w", task.ProcessedImageID, err)
	}

	// выполняем саму операцию
	if pErr := w.processTask(ctx, &task); pErr != nil {
		errMsg := pErr.Error()
		if _, uErr := w.service.UpdateStatus(ctx, &model.StatusUpdateRequest{
			ProcessedImageID: task.ProcessedImageID,
			Status:           model.StatusFailed,
			ErrMsg:           model.OptionalString{Set: true, Value: &errMsg},
		}); uErr != nil {
			return fmt.Errorf("failed to set status of task %d to `failed` in DB: %w \nAFTER\n error while processing task: %w", task.ProcessedImageID, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %d: %w", task.ProcessedImageID, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Task) error {
	// достать из storage исходник
	base, _, err := w.storage.Get(ctx, task.SourcePath)
	if err != nil {
		return fmt.Errorf("worker failed to fetch base-image from storage: %w", err)
	}
	defer closeFileFlow(base)

	// определить формат выходного файла по расширению исходника
	ext := filepath.Ext(task.SourcePath)
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return fmt.Errorf("worker failed to detect source format %q: %w", ext, err)
	}

	// выполнить операцию
	var result *imageproc.Result
	switch task.Type {
	case "resize":
		result, err = imageproc.Resizer(base, resizeWidth, 0, format)
	case "thumbnail":
		result, err = imageproc.Thumbnailer(base, thumbnailSide, thumbnailSide, format)
	case "grayscale":
		result, err = imageproc.Grayscaler(base, format)
	default:
		return fmt.Errorf("unsupported processing type %q", task.Type)
	}
	if err != nil {
		return fmt.Errorf("worker failed to apply %q: %w", task.Type, err)
	}

	// положить результат в сторедж если ошибок нет на предыдущем этапе
	resKey := fmt.Sprintf("%s%d_%s%s", w.resultPrefix, task.ProcessedImageID, task.Type, ext)
	if err := w.storage.Put(ctx, resKey, result.Size, model.GetCType[format], result.Data); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}

	// обновить запись в БД
	if _, err := w.service.UpdateStatus(ctx, &model.StatusUpdateRequest{
		ProcessedImageID: task.ProcessedImageID,
		Status:           model.StatusCompleted,
		ProcessedPath:    &resKey,
		FileSize:         &result.Size,
		Width:            &result.Width,
		Height:           &result.Height,
	}); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
