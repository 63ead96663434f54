// Package model provides data-structs for internal app-usage
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/disintegration/imaging"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var StatusMap = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusFailed:     true,
}

const DefaultProcessingType = "background_removal"

//---------------------

type Image struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalPath string    `json:"original_path"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	Width        *int      `json:"width,omitempty"`
	Height       *int      `json:"height,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProcessedImage struct {
	ID              int64      `json:"id"`
	OriginalImageID int64      `json:"original_image_id"`
	ProcessedPath   string     `json:"processed_path"`
	Status          Status     `json:"processing_status"`
	Type            string     `json:"processing_type"`
	FileSize        *int64     `json:"file_size,omitempty"`
	Width           *int       `json:"width,omitempty"`
	Height          *int       `json:"height,omitempty"`
	ErrMsg          *string    `json:"error_message,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ImageWithProcessed struct {
	Image
	Processed []ProcessedImage `json:"processed_images"`
}

//-------------------

type UploadRequest struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
	MimeType string `json:"mime_type"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
}

type ProcessRequest struct {
	ImageID int64  `json:"image_id"`
	Type    string `json:"processing_type"`
}

type StatusUpdateRequest struct {
	ProcessedImageID int64          `json:"processed_image_id"`
	Status           Status         `json:"status"`
	ProcessedPath    *string        `json:"processed_path"`
	FileSize         *int64         `json:"file_size"`
	Width            *int           `json:"width"`
	Height           *int           `json:"height"`
	ErrMsg           OptionalString `json:"error_message"`
}

type ListRequest struct {
	IncludeProcessed *bool  `form:"include_processed"`
	Status           string `form:"processing_status"`
	Limit            int    `form:"limit"`
	Offset           int    `form:"offset"`
}

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type DownloadResponse struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// Task - сообщение в очередь для обработчиков
type Task struct {
	ProcessedImageID int64  `json:"processed_image_id"`
	ImageID          int64  `json:"image_id"`
	Type             string `json:"processing_type"`
	SourcePath       string `json:"source_path"`
}

// ------------------

var (
	ErrCommon500         error = errors.New("something went wrong. Try again later")                     // 500
	ErrIncorrectQuery    error = errors.New("incorrect query parameters")                                // 400
	ErrIncorrectID       error = errors.New("incorrect numeric id")                                      // 400
	ErrImageNotFound     error = errors.New("specified image id doesn't exist")                          // 404
	ErrProcessedNotFound error = errors.New("specified processed-image id doesn't exist")                // 404
	ErrBrokenOwnerLink   error = errors.New("processed image references a missing original")             // 500
	ErrIncorrectStatus   error = errors.New("incorrect status provided")                                 // 400
	ErrBadFileData       error = errors.New("file_data is not valid base64")                             // 400
	ErrDownloadTarget    error = errors.New("exactly one of image_id or processed_image_id must be set") // 400
	ErrStorageIO         error = errors.New("file storage failure")                                      // 500
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	WEBP = "image/webp"
	BMP  = "image/bmp"
	TIFF = "image/tiff"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	WEBP: ".webp",
	BMP:  ".bmp",
	TIFF: ".tiff",
}

// GenericExt - для неизвестных mime-типов
const GenericExt = ".bin"

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.PNG:  PNG,
	imaging.GIF:  GIF,
	imaging.BMP:  BMP,
	imaging.TIFF: TIFF,
}

//--------------------

// OptionalString различает "поле отсутствует в JSON" и "поле явно null":
// UnmarshalJSON вызывается только для присутствующих полей.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(b, []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("invalid type for OptionalString")
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
