package imgpostgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"imagecatalog/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newRepoWithMock(t *testing.T) (PostgresRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	pg := &dbpg.DB{Master: db}

	repo := PostgresRepo{DB: pg}

	return repo, mock
}

var imageCols = []string{
	"id", "filename", "original_path", "file_size", "mime_type",
	"width", "height", "uploaded_at", "updated_at",
}

var processedCols = []string{
	"id", "original_image_id", "processed_path", "processing_status", "processing_type",
	"file_size", "width", "height", "error_message", "processed_at", "created_at", "updated_at",
}

// CREATE IMAGE - SUCCESS
func TestPostgresRepo_CreateImage_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	img := &model.Image{
		Filename:     "cat.png",
		OriginalPath: "source/abc.png",
		FileSize:     1024,
		MimeType:     model.PNG,
	}

	mock.ExpectQuery(`INSERT INTO images`).
		WithArgs(
			img.Filename,
			img.OriginalPath,
			img.FileSize,
			img.MimeType,
			img.Width,
			img.Height,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at", "updated_at"}).
			AddRow(int64(7), time.Now(), time.Now()))

	err := repo.CreateImage(context.Background(), img)
	require.NoError(t, err)
	require.Equal(t, int64(7), img.ID)
}

// GET IMAGE - SUCCESS
func TestPostgresRepo_GetImage_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(imageCols).AddRow(
		int64(3), "cat.png", "source/abc.png", int64(1024), model.PNG,
		nil, nil, time.Now(), time.Now(),
	)

	mock.ExpectQuery(`SELECT id, filename`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	img, err := repo.GetImage(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), img.ID)
	require.Equal(t, "cat.png", img.Filename)
}

// GET IMAGE - NOT FOUND
func TestPostgresRepo_GetImage_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, filename`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetImage(context.Background(), 42)
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// LIST - SUCCESS, NO FILTER
func TestPostgresRepo_ListImages_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	req := &model.ListRequest{Limit: 2, Offset: 0}

	rows := sqlmock.NewRows(imageCols).
		AddRow(int64(2), "b.jpg", "source/b.jpg", int64(10), model.JPEG, nil, nil, time.Now(), time.Now()).
		AddRow(int64(1), "a.jpg", "source/a.jpg", int64(20), model.JPEG, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT id, filename`).
		WithArgs(2, 0).
		WillReturnRows(rows)

	res, err := repo.ListImages(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res, 2)
}

// LIST - SUCCESS, STATUS FILTER USES DISTINCT JOIN
func TestPostgresRepo_ListImages_StatusFilter(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	req := &model.ListRequest{Limit: 10, Offset: 0, Status: string(model.StatusCompleted)}

	rows := sqlmock.NewRows(imageCols).
		AddRow(int64(5), "c.png", "source/c.png", int64(30), model.PNG, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT DISTINCT i\.id`).
		WithArgs(req.Status, 10, 0).
		WillReturnRows(rows)

	res, err := repo.ListImages(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, int64(5), res[0].ID)
}

// GALLERY - SUCCESS
func TestPostgresRepo_ListGallery_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(imageCols).
		AddRow(int64(9), "new.png", "source/new.png", int64(5), model.PNG, nil, nil, time.Now(), time.Now()).
		AddRow(int64(1), "old.png", "source/old.png", int64(5), model.PNG, nil, nil, time.Now().Add(-time.Hour), time.Now())

	mock.ExpectQuery(`SELECT id, filename`).
		WithArgs(model.StatusCompleted).
		WillReturnRows(rows)

	res, err := repo.ListGallery(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, int64(9), res[0].ID)
}

// DELETE IMAGE - SUCCESS
func TestPostgresRepo_DeleteImage_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM images`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1)) // 1 row affected

	err := repo.DeleteImage(context.Background(), 1)
	require.NoError(t, err)
}

// DELETE IMAGE - NOT FOUND
func TestPostgresRepo_DeleteImage_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM images`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected

	err := repo.DeleteImage(context.Background(), 1)
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// DELETE IMAGE - DBERROR
func TestPostgresRepo_DeleteImage_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM images`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("db down"))

	err := repo.DeleteImage(context.Background(), 1)
	require.Error(t, err)
}

// CREATE PROCESSED - SUCCESS
func TestPostgresRepo_CreateProcessed_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	pi := &model.ProcessedImage{
		OriginalImageID: 3,
		Status:          model.StatusPending,
		Type:            "resize",
	}

	mock.ExpectQuery(`INSERT INTO processed_images`).
		WithArgs(pi.OriginalImageID, pi.ProcessedPath, pi.Status, pi.Type).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(11), time.Now(), time.Now()))

	err := repo.CreateProcessed(context.Background(), pi)
	require.NoError(t, err)
	require.Equal(t, int64(11), pi.ID)
}

// GET PROCESSED - NOT FOUND
func TestPostgresRepo_GetProcessed_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, original_image_id`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProcessed(context.Background(), 11)
	require.ErrorIs(t, err, model.ErrProcessedNotFound)
}

// LIST PROCESSED BY IMAGE - SUCCESS
func TestPostgresRepo_ListProcessedByImage_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(processedCols).
		AddRow(int64(1), int64(3), "", model.StatusPending, "resize", nil, nil, nil, nil, nil, time.Now(), time.Now()).
		AddRow(int64(2), int64(3), "processed/2_resize.png", model.StatusCompleted, "resize", int64(512), 100, 100, nil, time.Now(), time.Now(), time.Now())

	mock.ExpectQuery(`SELECT id, original_image_id`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	res, err := repo.ListProcessedByImage(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, model.StatusCompleted, res[1].Status)
	require.Equal(t, int64(512), *res[1].FileSize)
}

// UPDATE PROCESSED - SUCCESS, COLUMNS APPLIED IN SORTED ORDER
func TestPostgresRepo_UpdateProcessed_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	fields := map[string]any{
		"processing_status": model.StatusCompleted,
		"file_size":         int64(512),
	}

	// сортировка ключей: file_size < processing_status
	mock.ExpectExec(`UPDATE processed_images SET file_size = \$1, processing_status = \$2, updated_at = now\(\) WHERE id = \$3`).
		WithArgs(int64(512), model.StatusCompleted, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProcessed(context.Background(), 11, fields)
	require.NoError(t, err)
}

// UPDATE PROCESSED - EXPLICIT NULL FOR ERROR MESSAGE
func TestPostgresRepo_UpdateProcessed_NullErrMsg(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	fields := map[string]any{
		"processing_status": model.StatusPending,
		"error_message":     nil,
	}

	mock.ExpectExec(`UPDATE processed_images SET error_message = \$1, processing_status = \$2, updated_at = now\(\) WHERE id = \$3`).
		WithArgs(nil, model.StatusPending, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProcessed(context.Background(), 11, fields)
	require.NoError(t, err)
}

// UPDATE PROCESSED - NOT FOUND
func TestPostgresRepo_UpdateProcessed_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE processed_images`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProcessed(context.Background(), 11, map[string]any{"processing_status": model.StatusFailed})
	require.ErrorIs(t, err, model.ErrProcessedNotFound)
}

// DELETE PROCESSED BY IMAGE - ZERO ROWS IS NOT AN ERROR
func TestPostgresRepo_DeleteProcessedByImage_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM processed_images`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteProcessedByImage(context.Background(), 3)
	require.NoError(t, err)
}

// FETCH STALE TASKS - SUCCESS
func TestPostgresRepo_FetchStaleTasks_OK(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "original_image_id", "processing_type", "original_path"}).
		AddRow(int64(1), int64(3), "resize", "source/a.png").
		AddRow(int64(2), int64(4), "background_removal", "source/b.png")

	mock.ExpectQuery(`SELECT p\.id`).
		WithArgs(model.StatusPending, model.StatusProcessing, 2).
		WillReturnRows(rows)

	res, err := repo.FetchStaleTasks(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "source/a.png", res[0].SourcePath)
}
