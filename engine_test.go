package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestRegion(t *testing.T) {
	cases := []struct {
		name         string
		bounds       image.Rectangle
		logoW, logoH int
		scale        float64
		wantNominal  image.Rectangle
		wantRealized image.Rectangle
	}{
		{
			name:         "wide_logo",
			bounds:       image.Rect(0, 0, 1000, 800),
			logoW:        200,
			logoH:        100,
			scale:        0.4,
			wantNominal:  image.Rect(300, 300, 700, 500),
			wantRealized: image.Rect(300, 300, 700, 500),
		},
		{
			name:         "odd_sizes",
			bounds:       image.Rect(0, 0, 101, 67),
			logoW:        3,
			logoH:        2,
			scale:        0.4,
			wantNominal:  image.Rect(30, 20, 70, 46),
			wantRealized: image.Rect(30, 20, 70, 46),
		},
		{
			name:         "tall_logo_clipped",
			bounds:       image.Rect(0, 0, 100, 50),
			logoW:        10,
			logoH:        100,
			scale:        0.4,
			wantNominal:  image.Rect(30, -175, 70, 225),
			wantRealized: image.Rect(30, 0, 70, 50),
		},
		{
			name:         "full_width",
			bounds:       image.Rect(0, 0, 64, 64),
			logoW:        50,
			logoH:        50,
			scale:        1,
			wantNominal:  image.Rect(0, 0, 64, 64),
			wantRealized: image.Rect(0, 0, 64, 64),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			nominal, realized := Region(tc.bounds, tc.logoW, tc.logoH, tc.scale)
			if nominal != tc.wantNominal {
				t.Fatalf("nominal = %v, want %v", nominal, tc.wantNominal)
			}
			if realized != tc.wantRealized {
				t.Fatalf("realized = %v, want %v", realized, tc.wantRealized)
			}
		})
	}
}

func TestRegionWidthAndAspect(t *testing.T) {
	logos := [][2]int{{200, 100}, {37, 91}, {640, 480}, {1, 1}}
	for _, w := range []int{17, 320, 999, 4032} {
		for _, h := range []int{11, 240, 3024} {
			for _, s := range []float64{0.1, 0.25, 0.4, 0.9, 1} {
				for _, l := range logos {
					nominal, realized := Region(image.Rect(0, 0, w, h), l[0], l[1], s)

					if got, want := nominal.Dx(), int(math.Floor(float64(w)*s)); got != want {
						t.Fatalf("bg %dx%d scale %v: width %d, want %d", w, h, s, got, want)
					}
					exact := float64(nominal.Dx()) * float64(l[1]) / float64(l[0])
					if d := exact - float64(nominal.Dy()); d < 0 || d >= 1 {
						t.Fatalf("bg %dx%d logo %v scale %v: height %d, exact %.3f", w, h, l, s, nominal.Dy(), exact)
					}
					if !realized.In(image.Rect(0, 0, w, h)) && !realized.Empty() {
						t.Fatalf("realized %v exceeds %dx%d", realized, w, h)
					}
				}
			}
		}
	}
}

func newTestEngine(t *testing.T, opacity float64) *Engine {
	t.Helper()
	eng, err := NewEngine(Options{Opacity: opacity, Scale: DefaultScale, Interpolation: InterpolationNearest})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestApplyBlend(t *testing.T) {
	bg := gradient(120, 90, OrderBGR)
	logo := gradient(30, 20, OrderBGR)

	for _, opacity := range []float64{0, 0.3, 1} {
		opacity := opacity
		t.Run(fmt.Sprintf("opacity_%v", opacity), func(t *testing.T) {
			eng := newTestEngine(t, opacity)

			out, err := eng.Apply(bg, logo)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}

			_, roi := Region(bg.Bounds(), logo.W, logo.H, DefaultScale)
			fitted := resizeTo(logo, roi.Dx(), roi.Dy(), InterpolationNearest, OrderBGR)

			for y := 0; y < bg.H; y++ {
				for x := 0; x < bg.W; x++ {
					o := y*bg.Stride + x*3
					got := out.Pix[o : o+3]
					if !(image.Point{X: x, Y: y}).In(roi) {
						if !bytes.Equal(got, bg.Pix[o:o+3]) {
							t.Fatalf("pixel (%d,%d) outside roi changed", x, y)
						}
						continue
					}

					f := (y-roi.Min.Y)*fitted.Stride + (x-roi.Min.X)*3
					for c := 0; c < 3; c++ {
						b, l := float64(bg.Pix[o+c]), float64(fitted.Pix[f+c])
						switch opacity {
						case 0:
							if got[c] != bg.Pix[o+c] {
								t.Fatalf("opacity 0 changed (%d,%d)", x, y)
							}
						case 1:
							if got[c] != fitted.Pix[f+c] {
								t.Fatalf("opacity 1 at (%d,%d): %d, want %d", x, y, got[c], fitted.Pix[f+c])
							}
						default:
							want := math.Round(b*(1-opacity) + l*opacity)
							if math.Abs(float64(got[c])-want) > 1 {
								t.Fatalf("(%d,%d,%d): %d, want %.0f", x, y, c, got[c], want)
							}
						}
					}
				}
			}
		})
	}
}

func TestApplyDoesNotMutateInputs(t *testing.T) {
	bg := gradient(64, 48, OrderBGR)
	logo := gradient(16, 16, OrderRGB)
	bgBefore := bg.Clone()
	logoBefore := logo.Clone()

	if _, err := newTestEngine(t, 0.5).Apply(bg, logo); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !bytes.Equal(bg.Pix, bgBefore.Pix) {
		t.Fatalf("background mutated")
	}
	if !bytes.Equal(logo.Pix, logoBefore.Pix) || logo.Order != OrderRGB {
		t.Fatalf("logo mutated")
	}
}

func TestApplyInPlace(t *testing.T) {
	bg := solid(50, 40, OrderBGR, color.RGBA{A: 255})
	logo := solid(10, 10, OrderBGR, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	roi, err := newTestEngine(t, 1).ApplyInPlace(bg, logo)
	if err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	if want := image.Rect(15, 10, 35, 30); roi != want {
		t.Fatalf("roi = %v, want %v", roi, want)
	}
	if c := bg.At(25, 20); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("center = %v, want white", c)
	}
	if c := bg.At(0, 0); c != (color.RGBA{A: 255}) {
		t.Fatalf("corner = %v, want black", c)
	}
}

func TestApplyMixedChannelOrder(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	bg := solid(40, 40, OrderBGR, color.RGBA{B: 255, A: 255})
	logo := solid(8, 8, OrderRGB, red)

	out, err := newTestEngine(t, 1).Apply(bg, logo)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Order != OrderBGR {
		t.Fatalf("order = %v, want BGR", out.Order)
	}
	if c := out.At(20, 20); c != red {
		t.Fatalf("center = %v, want %v", c, red)
	}
}

func TestApplyTallLogoFitsRealizedRegion(t *testing.T) {
	bg := gradient(100, 50, OrderBGR)
	logo := gradient(10, 100, OrderBGR)

	out, err := newTestEngine(t, 0.3).Apply(bg, logo)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.W != bg.W || out.H != bg.H {
		t.Fatalf("output %dx%d, want %dx%d", out.W, out.H, bg.W, bg.H)
	}
	// Columns left of the clipped region keep their values on every row.
	for y := 0; y < bg.H; y++ {
		o := y*bg.Stride + 29*3
		if !bytes.Equal(out.Pix[o:o+3], bg.Pix[o:o+3]) {
			t.Fatalf("column 29 row %d changed", y)
		}
	}
}

func TestApplyNilInputs(t *testing.T) {
	eng := newTestEngine(t, 0.3)
	bg := gradient(20, 20, OrderBGR)
	before := bg.Clone()

	if out, err := eng.Apply(nil, bg); !errors.Is(err, ErrNilImage) || out != nil {
		t.Fatalf("Apply(nil, logo) = %v, %v", out, err)
	}
	if out, err := eng.Apply(bg, nil); !errors.Is(err, ErrNilImage) || out != nil {
		t.Fatalf("Apply(bg, nil) = %v, %v", out, err)
	}
	if _, err := eng.ApplyInPlace(bg, nil); !errors.Is(err, ErrNilImage) {
		t.Fatalf("ApplyInPlace(bg, nil) err = %v", err)
	}
	if !bytes.Equal(bg.Pix, before.Pix) {
		t.Fatalf("background mutated on nil logo")
	}
}

func TestApplyEmptyRegion(t *testing.T) {
	bg := gradient(2, 2, OrderBGR)
	before := bg.Clone()

	_, err := newTestEngine(t, 0.3).ApplyInPlace(bg, gradient(4, 4, OrderBGR))
	if !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("err = %v, want ErrEmptyRegion", err)
	}
	if !bytes.Equal(bg.Pix, before.Pix) {
		t.Fatalf("background mutated")
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		ok   bool
	}{
		{name: "defaults", opts: DefaultOptions(), ok: true},
		{name: "opaque_full", opts: Options{Opacity: 1, Scale: 1}, ok: true},
		{name: "invisible", opts: Options{Opacity: 0, Scale: 0.1}, ok: true},
		{name: "negative_opacity", opts: Options{Opacity: -0.1, Scale: 0.4}},
		{name: "opacity_above_one", opts: Options{Opacity: 1.5, Scale: 0.4}},
		{name: "zero_scale", opts: Options{Opacity: 0.3, Scale: 0}},
		{name: "scale_above_one", opts: Options{Opacity: 0.3, Scale: 1.2}},
		{name: "nan", opts: Options{Opacity: math.NaN(), Scale: 0.4}},
		{name: "bad_interpolation", opts: Options{Opacity: 0.3, Scale: 0.4, Interpolation: Interpolation(42)}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidOptions) {
				t.Fatalf("err = %v, want ErrInvalidOptions", err)
			}
		})
	}

	if _, err := NewEngine(Options{Opacity: 2, Scale: 0.4}); err == nil {
		t.Fatalf("NewEngine accepted opacity 2")
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Opacity != 0.3 || o.Scale != 0.4 || o.Interpolation != InterpolationBilinear {
		t.Fatalf("DefaultOptions() = %+v", o)
	}
}
