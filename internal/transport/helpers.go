package transport

import (
	"errors"

	"imagecatalog/internal/model"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrBrokenOwnerLink),
		errors.Is(err, model.ErrStorageIO):
		return 500
	case errors.Is(err, model.ErrImageNotFound),
		errors.Is(err, model.ErrProcessedNotFound):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrIncorrectStatus),
		errors.Is(err, model.ErrBadFileData),
		errors.Is(err, model.ErrDownloadTarget):
		return 400
	default:
		return 500
	}
}
