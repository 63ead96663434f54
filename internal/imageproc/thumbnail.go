package imageproc

import (
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

func Thumbnailer(r io.Reader, x, y int, format imaging.Format) (*Result, error) {
	if r == nil {
		return nil, errors.New("nil-reader baseIMG provided to Thumbnailer")
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to DEcode baseIMG in Thumbnailer: %w", err)
	}

	thumb := imaging.Thumbnail(img, x, y, imaging.Lanczos)

	return encodeResult(thumb, format)
}
