package watermark

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/jpegn"

	// Register common decoders, including WebP via x/image/webp.
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

var jpegOptions = &jpegn.Options{
	ToRGBA:         true,
	UpsampleMethod: jpegn.CatmullRom,
	AutoRotate:     true,
}

// Decode reads an image from the reader, returning the decoded image and the
// detected format string ("png", "jpeg", "webp", etc.). JPEG input is decoded
// with EXIF orientation applied.
func Decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)

	magic, _ := br.Peek(2)
	if bytes.Equal(magic, []byte{0xff, 0xd8}) {
		img, err := jpegn.Decode(br, jpegOptions)
		return img, "jpeg", err
	}

	return image.Decode(br)
}

// DecodeImageBytes decodes an in-memory image.
func DecodeImageBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}
	return Decode(bytes.NewReader(data))
}

// LoadImage reads a raster file into a buffer in PipelineOrder.
func LoadImage(path string) (*Pixmap, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return PixmapFromImage(toNRGBA(img), PipelineOrder), nil
}

// EncodePNG writes the provided image to the writer as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if p, ok := img.(*Pixmap); ok {
		img = p.ToRGBA()
	}
	return png.Encode(w, img)
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return EncodePNG(f, img)
}

// WatermarkBytes decodes background data, composites logo with opts, and
// returns the result encoded as PNG.
func WatermarkBytes(data []byte, logo *Pixmap, opts Options) ([]byte, error) {
	img, _, err := DecodeImageBytes(data)
	if err != nil {
		return nil, err
	}

	eng, err := NewEngine(opts)
	if err != nil {
		return nil, err
	}

	out, err := eng.Apply(PixmapFromImage(toNRGBA(img), PipelineOrder), logo)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OutputName derives "<base><suffix>.png" from an input file name.
func OutputName(name, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return base + suffix + ".png"
}
