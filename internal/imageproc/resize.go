package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Result - закодированный результат операции плюс его метаданные для каталога
type Result struct {
	Data   io.Reader
	Size   int64
	Width  int
	Height int
}

func Resizer(r io.Reader, x, y int, format imaging.Format) (*Result, error) {
	if r == nil {
		return nil, errors.New("nil-reader baseIMG provided to Resizer")
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to DEcode baseIMG in Resizer: %w", err)
	}

	resized := imaging.Resize(img, x, y, imaging.Lanczos)

	return encodeResult(resized, format)
}

func encodeResult(img image.Image, format imaging.Format) (*Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("failed to ENcode resultIMG: %w", err)
	}
	return &Result{
		Data:   &buf,
		Size:   int64(buf.Len()),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
