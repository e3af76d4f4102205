package render

import (
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/curecircle/curecircle-server/internal/style"
)

// BlendMode is a CSS mix-blend-mode subset used by filter overlays.
type BlendMode string

// Supported blend modes.
const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendOverlay  BlendMode = "overlay"
)

// ParseBlendMode maps a preset's blend mode string, defaulting to normal.
func ParseBlendMode(s string) BlendMode {
	switch BlendMode(strings.ToLower(s)) {
	case BlendMultiply:
		return BlendMultiply
	case BlendScreen:
		return BlendScreen
	case BlendOverlay:
		return BlendOverlay
	default:
		return BlendNormal
	}
}

// blendImage composites overlay onto base with the given mode, mixed in at
// opacity in [0,1]. Both images must share bounds; overlay pixels outside
// base are ignored.
func blendImage(base *image.NRGBA, overlay *image.NRGBA, mode BlendMode, opacity float64) *image.NRGBA {
	if opacity <= 0 {
		return base
	}
	if opacity > 1 {
		opacity = 1
	}

	out := imaging.Clone(base)
	bounds := out.Bounds().Intersect(overlay.Bounds())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			b := out.NRGBAAt(x, y)
			o := overlay.NRGBAAt(x, y)

			mix := opacity * float64(o.A) / 255

			b.R = mixChannel(b.R, blendChannel(b.R, o.R, mode), mix)
			b.G = mixChannel(b.G, blendChannel(b.G, o.G, mode), mix)
			b.B = mixChannel(b.B, blendChannel(b.B, o.B, mode), mix)
			out.SetNRGBA(x, y, b)
		}
	}
	return out
}

// blendChannel applies the blend formula to one 8-bit channel pair.
func blendChannel(base, over uint8, mode BlendMode) uint8 {
	b, o := float64(base)/255, float64(over)/255

	var v float64
	switch mode {
	case BlendMultiply:
		v = b * o
	case BlendScreen:
		v = 1 - (1-b)*(1-o)
	case BlendOverlay:
		if b < 0.5 {
			v = 2 * b * o
		} else {
			v = 1 - 2*(1-b)*(1-o)
		}
	default:
		v = o
	}

	return uint8(math.Round(v * 255))
}

// mixChannel linearly interpolates between base and blended by t.
func mixChannel(base, blended uint8, t float64) uint8 {
	return uint8(math.Round(float64(base) + (float64(blended)-float64(base))*t))
}

// rasterizeFill paints a CSS fill (hex color or linear-gradient) onto a new
// canvas of the given size.
func rasterizeFill(width, height int, cssBackground string) (*image.NRGBA, error) {
	dc := gg.NewContext(width, height)
	if err := paintFill(dc, width, height, cssBackground); err != nil {
		return nil, err
	}
	return imaging.Clone(dc.Image()), nil
}

// paintFill fills the whole context with a hex color or linear gradient.
func paintFill(dc *gg.Context, width, height int, cssBackground string) error {
	if strings.HasPrefix(cssBackground, "linear-gradient(") {
		grad, err := style.ParseGradient(cssBackground)
		if err != nil {
			return err
		}
		dc.SetFillStyle(linearGradientPaint(grad, width, height))
		dc.DrawRectangle(0, 0, float64(width), float64(height))
		dc.Fill()
		return nil
	}

	col, err := style.ParseHexColor(cssBackground)
	if err != nil {
		return err
	}
	dc.SetColor(col)
	dc.Clear()
	return nil
}

// linearGradientPaint converts a parsed CSS gradient into a gg pattern. CSS
// angles run clockwise from "to top"; the gradient line passes through the
// canvas center with length equal to the canvas projection onto it.
func linearGradientPaint(grad style.Gradient, width, height int) gg.Pattern {
	rad := grad.AngleDegrees * math.Pi / 180
	dirX, dirY := math.Sin(rad), -math.Cos(rad)

	w, h := float64(width), float64(height)
	length := math.Abs(w*dirX) + math.Abs(h*dirY)
	cx, cy := w/2, h/2

	x0, y0 := cx-dirX*length/2, cy-dirY*length/2
	x1, y1 := cx+dirX*length/2, cy+dirY*length/2

	paint := gg.NewLinearGradient(x0, y0, x1, y1)
	for _, stop := range grad.Stops {
		paint.AddColorStop(stop.Pos, stop.Color)
	}
	return paint
}
