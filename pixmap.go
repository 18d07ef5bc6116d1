package watermark

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ChannelOrder is the storage order of the three samples of a pixel.
type ChannelOrder int

const (
	// OrderRGB stores red, green, blue.
	OrderRGB ChannelOrder = iota
	// OrderBGR stores blue, green, red.
	OrderBGR
)

// PipelineOrder is the order the loaders hand to the compositor.
const PipelineOrder = OrderBGR

func (o ChannelOrder) String() string {
	switch o {
	case OrderRGB:
		return "RGB"
	case OrderBGR:
		return "BGR"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// Pixmap is an 8-bit, 3-channel pixel buffer of H rows by W columns.
// Pixel (x, y) starts at Pix[y*Stride+x*3].
type Pixmap struct {
	W, H   int
	Stride int
	Order  ChannelOrder
	Pix    []uint8
}

// NewPixmap allocates a zeroed buffer.
func NewPixmap(w, h int, order ChannelOrder) *Pixmap {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Pixmap{
		W:      w,
		H:      h,
		Stride: w * 3,
		Order:  order,
		Pix:    make([]uint8, w*h*3),
	}
}

// PixmapFromImage copies img into a new buffer stored in the given order.
// Alpha is discarded: the unpremultiplied colour of every pixel is kept, the
// way a 3-channel colour load treats transparent PNGs.
func PixmapFromImage(img image.Image, order ChannelOrder) *Pixmap {
	b := img.Bounds()
	p := NewPixmap(b.Dx(), b.Dy(), order)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < p.H; y++ {
			s := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			d := p.Pix[y*p.Stride:]
			for x := 0; x < p.W; x++ {
				p.put(d[x*3:], s[x*4], s[x*4+1], s[x*4+2])
			}
		}
	case *Pixmap:
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				r, g, bl := src.rgbAt(b.Min.X+x, b.Min.Y+y)
				p.put(p.Pix[y*p.Stride+x*3:], r, g, bl)
			}
		}
	default:
		for y := 0; y < p.H; y++ {
			for x := 0; x < p.W; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				p.put(p.Pix[y*p.Stride+x*3:], c.R, c.G, c.B)
			}
		}
	}

	return p
}

// put stores an RGB triple at d honouring the buffer order.
func (p *Pixmap) put(d []uint8, r, g, b uint8) {
	if p.Order == OrderBGR {
		d[0], d[1], d[2] = b, g, r
		return
	}
	d[0], d[1], d[2] = r, g, b
}

func (p *Pixmap) rgbAt(x, y int) (r, g, b uint8) {
	s := p.Pix[y*p.Stride+x*3:]
	if p.Order == OrderBGR {
		return s[2], s[1], s[0]
	}
	return s[0], s[1], s[2]
}

// Clone returns a deep copy.
func (p *Pixmap) Clone() *Pixmap {
	if p == nil {
		return nil
	}
	c := *p
	c.Pix = make([]uint8, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

// WithOrder returns a copy of p stored in the requested order. The colours
// are unchanged; only the sample layout differs.
func (p *Pixmap) WithOrder(order ChannelOrder) *Pixmap {
	c := p.Clone()
	if p.Order == order {
		return c
	}
	c.Order = order
	for y := 0; y < c.H; y++ {
		row := c.Pix[y*c.Stride : y*c.Stride+c.W*3]
		for i := 0; i < len(row); i += 3 {
			row[i], row[i+2] = row[i+2], row[i]
		}
	}
	return c
}

// ColorModel implements image.Image.
func (p *Pixmap) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *Pixmap) Bounds() image.Rectangle { return image.Rect(0, 0, p.W, p.H) }

// At implements image.Image. The returned colour does not depend on Order.
func (p *Pixmap) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Bounds()) {
		return color.RGBA{}
	}
	r, g, b := p.rgbAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// ToRGBA converts the buffer into an opaque *image.RGBA.
func (p *Pixmap) ToRGBA() *image.RGBA {
	dst := image.NewRGBA(p.Bounds())
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			r, g, b := p.rgbAt(x, y)
			o := dst.PixOffset(x, y)
			dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = r, g, b, 0xff
		}
	}
	return dst
}

// toNRGBA flattens any image into NRGBA so PixmapFromImage takes its fast path.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
