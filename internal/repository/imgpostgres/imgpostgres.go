// Package imgpostgres implements the catalog repository over Postgres
package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"imagecatalog/internal/model"

	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

const imageColumns = `id, filename, original_path, file_size, mime_type, width, height, uploaded_at, updated_at`

const processedColumns = `id, original_image_id, processed_path, processing_status, processing_type, file_size, width, height, error_message, processed_at, created_at, updated_at`

func (p PostgresRepo) CreateImage(ctx context.Context, n *model.Image) error {
	query := `INSERT INTO images (filename, original_path, file_size, mime_type, width, height)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, uploaded_at, updated_at`

	return p.DB.QueryRowContext(ctx, query,
		n.Filename,
		n.OriginalPath,
		n.FileSize,
		n.MimeType,
		n.Width,
		n.Height).Scan(&n.ID, &n.UploadedAt, &n.UpdatedAt)
}

func (p PostgresRepo) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	query := `SELECT ` + imageColumns + `
	FROM images
	WHERE id = $1`
	var image model.Image

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&image.ID,
		&image.Filename,
		&image.OriginalPath,
		&image.FileSize,
		&image.MimeType,
		&image.Width,
		&image.Height,
		&image.UploadedAt,
		&image.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrImageNotFound
		default:
			return nil, err // 500
		}
	}
	return &image, nil
}

func (p PostgresRepo) ListImages(ctx context.Context, req *model.ListRequest) ([]model.Image, error) {
	var rows *sql.Rows
	var err error

	if req.Status != "" {
		// DISTINCT: картинка с несколькими подходящими вариантами
		// не должна занимать несколько слотов страницы
		query := `SELECT DISTINCT i.id, i.filename, i.original_path, i.file_size, i.mime_type, i.width, i.height, i.uploaded_at, i.updated_at
		FROM images i
		JOIN processed_images p ON p.original_image_id = i.id
		WHERE p.processing_status = $1
		ORDER BY i.uploaded_at DESC
		LIMIT $2
		OFFSET $3`
		rows, err = p.DB.QueryContext(ctx, query, req.Status, req.Limit, req.Offset)
	} else {
		query := `SELECT ` + imageColumns + `
		FROM images
		ORDER BY uploaded_at DESC
		LIMIT $1
		OFFSET $2`
		rows, err = p.DB.QueryContext(ctx, query, req.Limit, req.Offset)
	}
	if err != nil {
		return nil, err
	}

	return scanImages(rows, req.Limit)
}

func (p PostgresRepo) ListGallery(ctx context.Context) ([]model.Image, error) {
	query := `SELECT ` + imageColumns + `
	FROM images i
	WHERE EXISTS (
		SELECT 1 FROM processed_images p
		WHERE p.original_image_id = i.id AND p.processing_status = $1
	)
	ORDER BY uploaded_at DESC`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	return scanImages(rows, 0)
}

func (p PostgresRepo) DeleteImage(ctx context.Context, id int64) error {
	query := `DELETE FROM images
	WHERE id = $1`

	res, err := p.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err // 500
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrImageNotFound // 404
	}
	return nil
}

func (p PostgresRepo) CreateProcessed(ctx context.Context, n *model.ProcessedImage) error {
	query := `INSERT INTO processed_images (original_image_id, processed_path, processing_status, processing_type)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at`

	return p.DB.QueryRowContext(ctx, query,
		n.OriginalImageID,
		n.ProcessedPath,
		n.Status,
		n.Type).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (p PostgresRepo) GetProcessed(ctx context.Context, id int64) (*model.ProcessedImage, error) {
	query := `SELECT ` + processedColumns + `
	FROM processed_images
	WHERE id = $1`
	var pi model.ProcessedImage

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&pi.ID,
		&pi.OriginalImageID,
		&pi.ProcessedPath,
		&pi.Status,
		&pi.Type,
		&pi.FileSize,
		&pi.Width,
		&pi.Height,
		&pi.ErrMsg,
		&pi.ProcessedAt,
		&pi.CreatedAt,
		&pi.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrProcessedNotFound
		default:
			return nil, err // 500
		}
	}
	return &pi, nil
}

func (p PostgresRepo) ListProcessedByImage(ctx context.Context, imageID int64) ([]model.ProcessedImage, error) {
	query := `SELECT ` + processedColumns + `
	FROM processed_images
	WHERE original_image_id = $1
	ORDER BY created_at`

	rows, err := p.DB.QueryContext(ctx, query, imageID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	list := make([]model.ProcessedImage, 0)
	for rows.Next() {
		var pi model.ProcessedImage
		if err := rows.Scan(&pi.ID,
			&pi.OriginalImageID,
			&pi.ProcessedPath,
			&pi.Status,
			&pi.Type,
			&pi.FileSize,
			&pi.Width,
			&pi.Height,
			&pi.ErrMsg,
			&pi.ProcessedAt,
			&pi.CreatedAt,
			&pi.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, pi)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return list, nil
}

// UpdateProcessed применяет частичное обновление: ключи fields - имена колонок,
// заданные сервисным слоем, не пользовательский ввод. updated_at ставится всегда.
func (p PostgresRepo) UpdateProcessed(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for k := range fields {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		set = append(set, fmt.Sprintf("%s = $%d", c, i+1))
		args = append(args, fields[c])
	}
	set = append(set, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE processed_images SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	res, err := p.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err // 500
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrProcessedNotFound // 404
	}
	return nil
}

func (p PostgresRepo) DeleteProcessedByImage(ctx context.Context, imageID int64) error {
	query := `DELETE FROM processed_images
	WHERE original_image_id = $1`

	// ноль удаленных строк - не ошибка: у картинки может не быть вариантов
	_, err := p.DB.ExecContext(ctx, query, imageID)
	return err
}

func (p PostgresRepo) FetchStaleTasks(ctx context.Context, limit int) ([]model.Task, error) {
	query := `SELECT p.id, p.original_image_id, p.processing_type, i.original_path
	FROM processed_images p
	JOIN images i ON i.id = p.original_image_id
	WHERE p.processing_status IN ($1, $2)
	AND p.updated_at < now() - interval '10 minutes'
	LIMIT $3`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusPending, model.StatusProcessing, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ProcessedImageID, &t.ImageID, &t.Type, &t.SourcePath); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return tasks, nil
}

func scanImages(rows *sql.Rows, capHint int) ([]model.Image, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	images := make([]model.Image, 0, capHint)
	for rows.Next() {
		var image model.Image
		if err := rows.Scan(&image.ID,
			&image.Filename,
			&image.OriginalPath,
			&image.FileSize,
			&image.MimeType,
			&image.Width,
			&image.Height,
			&image.UploadedAt,
			&image.UpdatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return images, nil
}
