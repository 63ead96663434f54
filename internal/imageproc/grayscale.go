// Package imageproc provides operations for images: resizing, thumbnail generation and grayscale conversion.
package imageproc

import (
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

func Grayscaler(r io.Reader, format imaging.Format) (*Result, error) {
	if r == nil {
		return nil, errors.New("nil-reader baseIMG provided to Grayscaler")
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to DEcode baseIMG in Grayscaler: %w", err)
	}

	gray := imaging.Grayscale(img)

	return encodeResult(gray, format)
}
