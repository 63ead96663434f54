package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testImageReader(t *testing.T, w, h int, format imaging.Format) io.Reader {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 50, B: 50, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return &buf
}

func mustDecode(t *testing.T, res *Result) image.Image {
	t.Helper()
	img, err := imaging.Decode(res.Data)
	require.NoError(t, err)
	return img
}

func TestResizer(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		x, y         int
		wantW, wantH int
	}{
		{name: "downscale fixed width keeps aspect", srcW: 200, srcH: 100, x: 100, y: 0, wantW: 100, wantH: 50},
		{name: "exact box", srcW: 200, srcH: 100, x: 60, y: 60, wantW: 60, wantH: 60},
		{name: "upscale", srcW: 50, srcH: 50, x: 100, y: 0, wantW: 100, wantH: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testImageReader(t, tt.srcW, tt.srcH, imaging.PNG)

			res, err := Resizer(src, tt.x, tt.y, imaging.PNG)
			require.NoError(t, err)
			require.Equal(t, tt.wantW, res.Width)
			require.Equal(t, tt.wantH, res.Height)
			require.Greater(t, res.Size, int64(0))

			img := mustDecode(t, res)
			require.Equal(t, tt.wantW, img.Bounds().Dx())
			require.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestResizer_BadInput(t *testing.T) {
	_, err := Resizer(nil, 100, 0, imaging.PNG)
	require.Error(t, err)

	_, err = Resizer(bytes.NewReader([]byte("garbage")), 100, 0, imaging.PNG)
	require.Error(t, err)
}

func TestThumbnailer(t *testing.T) {
	// thumbnail всегда ровно x на y независимо от пропорций исходника
	tests := []struct {
		name       string
		srcW, srcH int
	}{
		{name: "landscape", srcW: 300, srcH: 100},
		{name: "portrait", srcW: 100, srcH: 300},
		{name: "smaller than box", srcW: 40, srcH: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testImageReader(t, tt.srcW, tt.srcH, imaging.JPEG)

			res, err := Thumbnailer(src, 64, 64, imaging.JPEG)
			require.NoError(t, err)
			require.Equal(t, 64, res.Width)
			require.Equal(t, 64, res.Height)

			img := mustDecode(t, res)
			require.Equal(t, 64, img.Bounds().Dx())
			require.Equal(t, 64, img.Bounds().Dy())
		})
	}
}

func TestThumbnailer_BadInput(t *testing.T) {
	_, err := Thumbnailer(nil, 64, 64, imaging.PNG)
	require.Error(t, err)
}

func TestGrayscaler(t *testing.T) {
	src := testImageReader(t, 80, 60, imaging.PNG)

	res, err := Grayscaler(src, imaging.PNG)
	require.NoError(t, err)
	require.Equal(t, 80, res.Width)
	require.Equal(t, 60, res.Height)

	img := mustDecode(t, res)
	r, g, b, _ := img.At(10, 10).RGBA()
	require.Equal(t, r, g)
	require.Equal(t, g, b)
}

func TestGrayscaler_BadInput(t *testing.T) {
	_, err := Grayscaler(nil, imaging.PNG)
	require.Error(t, err)

	_, err = Grayscaler(bytes.NewReader(nil), imaging.PNG)
	require.Error(t, err)
}
