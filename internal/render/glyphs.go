package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/style"
)

// drawMark paints one decorative mark glyph centered at (px, py) in pixels.
func drawMark(dc *gg.Context, mark domain.DecorativeMark, px, py, scale float64) {
	size := mark.SizePx * scale
	if size <= 0 {
		return
	}

	col := markColor(mark)

	dc.Push()
	dc.Translate(px, py)
	dc.Rotate(gg.Radians(mark.RotationDegrees))
	dc.SetColor(col)

	switch mark.Kind {
	case domain.MarkHeart:
		heartPath(dc, size)
	case domain.MarkStar:
		starPath(dc, size/2, size/5, 5)
	case domain.MarkSparkle:
		starPath(dc, size/2, size/8, 4)
	default:
		dc.DrawCircle(0, 0, size/2)
	}
	dc.Fill()
	dc.Pop()
}

func markColor(mark domain.DecorativeMark) color.NRGBA {
	col, err := style.ParseHexColor(mark.ColorHex)
	if err != nil {
		col = color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff}
	}

	opacity := mark.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	col.A = uint8(math.Round(float64(col.A) * opacity))
	return col
}

// heartPath traces a heart glyph of roughly the given height, centered at
// the origin: two lobes and a point.
func heartPath(dc *gg.Context, size float64) {
	s := size / 2

	dc.MoveTo(0, s)
	dc.CubicTo(-s*1.1, s*0.25, -s*0.95, -s*0.9, 0, -s*0.3)
	dc.CubicTo(s*0.95, -s*0.9, s*1.1, s*0.25, 0, s)
	dc.ClosePath()
}

// starPath traces a star polygon with the given point count, alternating
// outer and inner radii, centered at the origin with a point facing up.
func starPath(dc *gg.Context, outer, inner float64, points int) {
	step := math.Pi / float64(points)
	for i := 0; i < points*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		angle := -math.Pi/2 + float64(i)*step
		x, y := r*math.Cos(angle), r*math.Sin(angle)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
}

// drawCrestPlaceholder paints the stand-in glyph for a crest whose art is
// unresolved or failed to load: an accent ring around a sparkle.
func drawCrestPlaceholder(dc *gg.Context, crest domain.CrestOverlay, px, py, scale float64, accent color.NRGBA) {
	size := crest.SizePx * scale
	if size <= 0 {
		return
	}

	opacity := crest.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	col := accent
	col.A = uint8(math.Round(float64(col.A) * opacity))

	dc.Push()
	dc.Translate(px, py)
	dc.Rotate(gg.Radians(crest.RotationDegrees))

	dc.SetColor(col)
	dc.SetLineWidth(math.Max(1.5*scale, 1))
	dc.DrawCircle(0, 0, size/2)
	dc.Stroke()

	starPath(dc, size/4, size/10, 4)
	dc.Fill()
	dc.Pop()
}
