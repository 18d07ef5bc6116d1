package watermark

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	// DefaultOpacity is the fraction of the logo visible after blending.
	DefaultOpacity = 0.3
	// DefaultScale is the logo width as a fraction of the background width.
	DefaultScale = 0.4
)

var (
	// ErrNilImage is returned when the background or the logo is missing.
	ErrNilImage = errors.New("background or logo image not loaded")
	// ErrEmptyRegion is returned when the logo region collapses to zero pixels.
	ErrEmptyRegion = errors.New("watermark region is empty")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid watermark options")
)

// Options controls how the logo is composited.
type Options struct {
	// Opacity is the blend weight of the logo, in [0, 1].
	Opacity float64
	// Scale is the logo width relative to the background width, in (0, 1].
	Scale float64
	// Interpolation is used when fitting the logo into the region.
	Interpolation Interpolation
}

// DefaultOptions returns opacity 0.3, scale 0.4 and bilinear resampling.
func DefaultOptions() Options {
	return Options{
		Opacity:       DefaultOpacity,
		Scale:         DefaultScale,
		Interpolation: InterpolationBilinear,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if math.IsNaN(o.Opacity) || o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0, 1]", ErrInvalidOptions, o.Opacity)
	}
	if math.IsNaN(o.Scale) || o.Scale <= 0 || o.Scale > 1 {
		return fmt.Errorf("%w: scale %v outside (0, 1]", ErrInvalidOptions, o.Scale)
	}
	if _, ok := interpolationNames[o.Interpolation]; !ok {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, o.Interpolation)
	}
	return nil
}

// Engine composites a logo onto backgrounds.
type Engine struct {
	opts Options
}

// NewEngine validates opts and builds an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Region computes the logo placement for a background with the given bounds.
//
// The nominal rectangle is floor(W*scale) wide, keeps the logo aspect ratio,
// and is centered using integer division. The realized rectangle is the
// nominal one clipped to bounds; the logo is always resized to the realized
// size.
func Region(bounds image.Rectangle, logoW, logoH int, scale float64) (nominal, realized image.Rectangle) {
	w, h := bounds.Dx(), bounds.Dy()

	nw := int(float64(w) * scale)
	nh := 0
	if logoW > 0 {
		nh = int(float64(nw) * float64(logoH) / float64(logoW))
	}

	top := h/2 - nh/2
	left := w/2 - nw/2

	nominal = image.Rect(left, top, left+nw, top+nh).Add(bounds.Min)
	realized = nominal.Intersect(bounds)
	return nominal, realized
}

// Apply blends logo onto a copy of bg and returns the copy. Neither input is
// modified.
func (e *Engine) Apply(bg, logo *Pixmap) (*Pixmap, error) {
	if bg == nil || logo == nil {
		return nil, ErrNilImage
	}
	out := bg.Clone()
	if _, err := e.ApplyInPlace(out, logo); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInPlace blends logo onto bg, mutating bg, and returns the realized
// region. On error bg is left untouched.
func (e *Engine) ApplyInPlace(bg, logo *Pixmap) (image.Rectangle, error) {
	if bg == nil || logo == nil {
		return image.Rectangle{}, ErrNilImage
	}

	_, roi := Region(bg.Bounds(), logo.W, logo.H, e.opts.Scale)
	if roi.Empty() || logo.W == 0 || logo.H == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: background %dx%d, logo %dx%d, scale %v",
			ErrEmptyRegion, bg.W, bg.H, logo.W, logo.H, e.opts.Scale)
	}

	fitted := resizeTo(logo, roi.Dx(), roi.Dy(), e.opts.Interpolation, bg.Order)
	blend(bg, fitted, roi, e.opts.Opacity)

	return roi, nil
}

// blend mixes fg into dst inside rect. fg must be exactly rect-sized and in
// the same channel order as dst.
func blend(dst, fg *Pixmap, rect image.Rectangle, opacity float64) {
	keep := 1.0 - opacity
	n := rect.Dx() * 3

	for row := 0; row < rect.Dy(); row++ {
		d := dst.Pix[(rect.Min.Y+row)*dst.Stride+rect.Min.X*3:]
		s := fg.Pix[row*fg.Stride:]
		for i := 0; i < n; i++ {
			v := float64(d[i])*keep + float64(s[i])*opacity
			d[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
	}
}
