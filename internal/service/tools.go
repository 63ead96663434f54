package service

import (
	"path/filepath"
	"strings"

	"imagecatalog/internal/model"
)

func normalizeListParams(req *model.ListRequest) error {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Limit <= 0 {
		req.Limit = model.DefaultLimit
	}
	if req.Limit > model.MaxLimit {
		req.Limit = model.MaxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.IncludeProcessed == nil {
		t := true
		req.IncludeProcessed = &t
	}

	// Валидируем фильтр по статусу если он задан
	if req.Status != "" {
		req.Status = strings.ToLower(strings.TrimSpace(req.Status))
		if !model.StatusMap[model.Status(req.Status)] {
			return model.ErrIncorrectStatus
		}
	}

	return nil
}

// storageExt - расширение для ключа хранения: из имени файла,
// иначе по mime-типу, иначе generic
func storageExt(filename, mimeType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	if ext, ok := model.GetImageFileExt[mimeType]; ok {
		return ext
	}
	return model.GenericExt
}

// downloadName вставляет тип обработки между базовым именем и расширением:
// "photo.jpg" + "resize" -> "photo_resize.jpg", "noext" + "enhance" -> "noext_enhance"
func downloadName(filename, pType string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return base + "_" + pType + ext
}
