package watermark

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/image/tiff"
)

// RawDecoder turns a camera raw file into an RGB buffer.
type RawDecoder interface {
	DecodeRaw(ctx context.Context, path string) (*Pixmap, error)
}

// RawDecoderFunc adapts a function to RawDecoder.
type RawDecoderFunc func(ctx context.Context, path string) (*Pixmap, error)

// DecodeRaw calls f.
func (f RawDecoderFunc) DecodeRaw(ctx context.Context, path string) (*Pixmap, error) {
	return f(ctx, path)
}

// DcrawDecoder runs dcraw with its default post-processing and reads the
// 8-bit TIFF it writes to stdout.
type DcrawDecoder struct {
	// Binary is the dcraw executable, "dcraw" when empty.
	Binary string
	// Args precede the file path, "-c -T" when nil.
	Args []string
}

// DecodeRaw implements RawDecoder. The result is in OrderRGB.
func (d DcrawDecoder) DecodeRaw(ctx context.Context, path string) (*Pixmap, error) {
	bin := d.Binary
	if bin == "" {
		bin = "dcraw"
	}
	args := d.Args
	if args == nil {
		args = []string{"-c", "-T"}
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, append(append([]string{}, args...), path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("dcraw %s: %w: %s", path, err, msg)
		}
		return nil, fmt.Errorf("dcraw %s: %w", path, err)
	}

	img, err := tiff.Decode(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decode dcraw output for %s: %w", path, err)
	}

	return PixmapFromImage(toNRGBA(img), OrderRGB), nil
}

// ReadRaw decodes path with dec and reorders the samples to PipelineOrder.
func ReadRaw(ctx context.Context, dec RawDecoder, path string) (*Pixmap, error) {
	p, err := dec.DecodeRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("raw decoder returned no image for %s", path)
	}
	return p.WithOrder(PipelineOrder), nil
}
