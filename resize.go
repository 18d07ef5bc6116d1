package watermark

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Interpolation selects the resampling kernel used to fit the logo into the
// region of interest.
type Interpolation int

const (
	// InterpolationBilinear is linear sampling.
	InterpolationBilinear Interpolation = iota
	// InterpolationNearest is nearest-neighbor sampling.
	InterpolationNearest
	// InterpolationCatmullRom is cubic sampling.
	InterpolationCatmullRom
	// InterpolationLanczos3 is Lanczos sampling with a=3.
	InterpolationLanczos3
)

var interpolationNames = map[Interpolation]string{
	InterpolationBilinear:   "bilinear",
	InterpolationNearest:    "nearest",
	InterpolationCatmullRom: "catmullrom",
	InterpolationLanczos3:   "lanczos3",
}

func (i Interpolation) String() string {
	if s, ok := interpolationNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation maps a name such as "bilinear" to its Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, v := range interpolationNames {
		if v == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// resizeTo scales src to exactly w x h and returns it in the given order.
func resizeTo(src *Pixmap, w, h int, interp Interpolation, order ChannelOrder) *Pixmap {
	if src.W == w && src.H == h {
		return src.WithOrder(order)
	}

	var out image.Image
	switch interp {
	case InterpolationLanczos3:
		out = resize.Resize(uint(w), uint(h), src.ToRGBA(), resize.Lanczos3)
	default:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		kernel(interp).Scale(dst, dst.Bounds(), src.ToRGBA(), src.Bounds(), draw.Src, nil)
		out = dst
	}

	return PixmapFromImage(out, order)
}

func kernel(interp Interpolation) draw.Scaler {
	switch interp {
	case InterpolationNearest:
		return draw.NearestNeighbor
	case InterpolationCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}
