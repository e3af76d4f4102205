package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Stop is a parsed gradient color stop. Pos is in [0,1].
type Stop struct {
	Color color.NRGBA
	Pos   float64
}

// Gradient is a parsed linear gradient.
type Gradient struct {
	AngleDegrees float64
	Stops        []Stop
}

// ParseGradient parses a CSS linear-gradient string of the form
// "linear-gradient(135deg, #ff69b4 0%, #ff0000 25%, ...)". Stops without an
// explicit position are spread evenly.
func ParseGradient(css string) (Gradient, error) {
	s := strings.TrimSpace(css)
	if !strings.HasPrefix(s, "linear-gradient(") || !strings.HasSuffix(s, ")") {
		return Gradient{}, fmt.Errorf("not a linear-gradient: %q", css)
	}
	inner := s[len("linear-gradient(") : len(s)-1]

	parts := splitTopLevel(inner)
	if len(parts) == 0 {
		return Gradient{}, fmt.Errorf("empty gradient: %q", css)
	}

	g := Gradient{AngleDegrees: 180} // CSS default: to bottom
	start := 0
	if strings.HasSuffix(strings.TrimSpace(parts[0]), "deg") {
		angleStr := strings.TrimSuffix(strings.TrimSpace(parts[0]), "deg")
		angle, err := strconv.ParseFloat(angleStr, 64)
		if err != nil {
			return Gradient{}, fmt.Errorf("bad gradient angle %q: %w", parts[0], err)
		}
		g.AngleDegrees = angle
		start = 1
	}

	raw := parts[start:]
	if len(raw) < 2 {
		return Gradient{}, fmt.Errorf("gradient needs at least two stops: %q", css)
	}

	for i, part := range raw {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			return Gradient{}, fmt.Errorf("empty gradient stop in %q", css)
		}

		col, err := ParseHexColor(fields[0])
		if err != nil {
			return Gradient{}, err
		}

		pos := float64(i) / float64(len(raw)-1)
		if len(fields) > 1 {
			pctStr := strings.TrimSuffix(fields[1], "%")
			pct, err := strconv.ParseFloat(pctStr, 64)
			if err != nil {
				return Gradient{}, fmt.Errorf("bad stop position %q: %w", fields[1], err)
			}
			pos = pct / 100
		}

		g.Stops = append(g.Stops, Stop{Color: col, Pos: pos})
	}

	return g, nil
}

// ParseHexColor parses #rgb, #rrggbb, and #rrggbbaa colors.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("not a hex color: %q", s)
	}
	hex := s[1:]

	switch len(hex) {
	case 3:
		var out color.NRGBA
		out.A = 0xff
		for i, dst := range []*uint8{&out.R, &out.G, &out.B} {
			v, err := strconv.ParseUint(string(hex[i]), 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("bad hex color %q: %w", s, err)
			}
			*dst = uint8(v * 17)
		}
		return out, nil

	case 6, 8:
		var out color.NRGBA
		out.A = 0xff
		dsts := []*uint8{&out.R, &out.G, &out.B}
		if len(hex) == 8 {
			dsts = append(dsts, &out.A)
		}
		for i, dst := range dsts {
			v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("bad hex color %q: %w", s, err)
			}
			*dst = uint8(v)
		}
		return out, nil

	default:
		return color.NRGBA{}, fmt.Errorf("bad hex color length: %q", s)
	}
}

// splitTopLevel splits on commas that are not inside parentheses, so color
// functions inside stops would not break parsing.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
