// Package render rasterizes card documents into images, for the share
// preview and the export pipeline. Layers compose bottom to top: background,
// filter overlay, content text and QR block, decorative marks, crest
// overlays.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/registry"
	"github.com/curecircle/curecircle-server/internal/style"
)

// Card canvas dimensions at scale 1.
const (
	BaseWidth  = 420
	BaseHeight = 660
)

// Options tune a single render pass.
type Options struct {
	// Scale multiplies the base canvas size. Zero means 1.
	Scale float64

	// FilterOpacityScale attenuates the filter overlay's preset opacity.
	// Zero means no attenuation. Export captures pass 0.35 here so heavy
	// filters do not crush the rasterized output.
	FilterOpacityScale float64

	// SkipBrokenImages substitutes fallbacks for unfetchable images instead
	// of failing the render. Used by the degraded export retry.
	SkipBrokenImages bool

	// ShareURL is the payload of the QR block when the card shows one.
	ShareURL string
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o Options) filterScale() float64 {
	if o.FilterOpacityScale <= 0 || o.FilterOpacityScale > 1 {
		return 1
	}
	return o.FilterOpacityScale
}

// Compositor renders card documents.
type Compositor struct {
	fetcher  Fetcher
	assetURL string // base URL for relative crest asset paths
	logger   *slog.Logger
}

// NewCompositor builds a compositor. assetURL is the public base URL that
// serves this instance's static crest art.
func NewCompositor(fetcher Fetcher, assetURL string, logger *slog.Logger) *Compositor {
	return &Compositor{fetcher: fetcher, assetURL: assetURL, logger: logger}
}

// Render rasterizes the card. The only hard failure is an unfetchable
// background image without SkipBrokenImages; everything else degrades to a
// fallback layer.
func (c *Compositor) Render(ctx context.Context, card *domain.CardDocument, opts Options) (image.Image, error) {
	scale := opts.scale()
	width := int(math.Round(BaseWidth * scale))
	height := int(math.Round(BaseHeight * scale))

	canvas, err := c.renderBackground(ctx, card, width, height, opts)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.DrawImage(canvas, 0, 0)

	c.renderContent(dc, card, width, height, scale, opts.ShareURL)

	for _, mark := range card.Marks {
		px := float64(width) * mark.XPercent / 100
		py := float64(height) * mark.YPercent / 100
		drawMark(dc, mark, px, py, scale)
	}

	return c.renderCrests(ctx, dc, card, width, height, scale), nil
}

// renderBackground produces the bottom two layers: background paint and, for
// image backgrounds, the filter overlay.
func (c *Compositor) renderBackground(ctx context.Context, card *domain.CardDocument, width, height int, opts Options) (*image.NRGBA, error) {
	desc, err := style.Resolve(card.Background)
	if errors.Is(err, style.ErrImageSourceEmpty) {
		return c.fallbackFill(width, height), nil
	}
	if err != nil {
		return nil, err
	}

	if desc.Kind == style.KindFill {
		fill, err := rasterizeFill(width, height, desc.CSSBackground)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("unpaintable background fill, using default", "error", err)
			}
			return c.fallbackFill(width, height), nil
		}
		return fill, nil
	}

	img, err := c.fetcher.Fetch(ctx, desc.ImageURL)
	if err != nil {
		if !opts.SkipBrokenImages {
			return nil, fmt.Errorf("background image %s: %w", desc.ImageURL, err)
		}
		if c.logger != nil {
			c.logger.Warn("skipping broken background image", "url", desc.ImageURL, "error", err)
		}
		return c.fallbackFill(width, height), nil
	}

	canvas := imaging.New(width, height, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	canvas = drawImageBackground(canvas, img, card.Background.Image, width, height)

	return c.applyFilterOverlay(canvas, desc.FilterID, width, height, opts), nil
}

// drawImageBackground places the fetched image per its scale, position,
// rotation, and opacity.
func drawImageBackground(canvas *image.NRGBA, img image.Image, bg *domain.ImageBackground, width, height int) *image.NRGBA {
	imgScale := bg.Scale
	if imgScale <= 0 {
		imgScale = 1
	}

	resized := imaging.Resize(img, int(math.Round(float64(width)*imgScale)), 0, imaging.Lanczos)
	if bg.RotationDegrees != 0 {
		resized = imaging.Rotate(resized, -bg.RotationDegrees, color.NRGBA{})
	}

	opacity := bg.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	b := resized.Bounds()
	pos := image.Pt(
		int(math.Round(float64(width)*bg.PositionXPercent/100))-b.Dx()/2,
		int(math.Round(float64(height)*bg.PositionYPercent/100))-b.Dy()/2,
	)
	return imaging.Overlay(canvas, resized, pos, opacity)
}

// applyFilterOverlay blends the card's filter preset above an image
// background. Fill backgrounds never carry a filter.
func (c *Compositor) applyFilterOverlay(canvas *image.NRGBA, filterID string, width, height int, opts Options) *image.NRGBA {
	if filterID == "" || filterID == registry.FilterNone {
		return canvas
	}

	preset := registry.LookupFilter(filterID)
	if preset.ID == registry.FilterNone || preset.Opacity <= 0 || preset.Background == "" {
		return canvas
	}

	overlay, err := rasterizeFill(width, height, preset.Background)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("unpaintable filter overlay, skipping", "filter", filterID, "error", err)
		}
		return canvas
	}

	opacity := preset.Opacity * opts.filterScale()
	return blendImage(canvas, overlay, ParseBlendMode(preset.BlendMode), opacity)
}

func (c *Compositor) fallbackFill(width, height int) *image.NRGBA {
	fill, err := rasterizeFill(width, height, registry.DefaultGradient().CSS)
	if err != nil {
		// The default preset is static and always parses; keep a solid
		// canvas as the unreachable last resort.
		return imaging.New(width, height, color.NRGBA{R: 0xff, G: 0xb7, B: 0xd5, A: 0xff})
	}
	return fill
}

// renderContent draws the text block and the optional QR code.
func (c *Compositor) renderContent(dc *gg.Context, card *domain.CardDocument, width, height int, scale float64, shareURL string) {
	textColor := parseColorOr(card.TextColor, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	accent := parseColorOr(card.AccentColor, color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff})

	cx := float64(width) / 2

	dc.SetColor(textColor)
	dc.SetFontFace(fontFace(30*scale, true))
	dc.DrawStringAnchored(card.DisplayName, cx, float64(height)*0.11, 0.5, 0.5)

	if card.Title != "" {
		dc.SetColor(accent)
		dc.SetFontFace(fontFace(17*scale, false))
		dc.DrawStringAnchored(card.Title, cx, float64(height)*0.11+34*scale, 0.5, 0.5)
	}

	dc.SetColor(textColor)
	dc.SetFontFace(fontFace(13*scale, false))
	margin := 24 * scale
	if card.FavoriteCharacter != "" {
		dc.DrawStringAnchored("♡ "+card.FavoriteCharacter, margin, float64(height)-60*scale, 0, 0.5)
	}
	if card.FavoriteSeries != "" {
		dc.DrawStringAnchored("♪ "+card.FavoriteSeries, margin, float64(height)-38*scale, 0, 0.5)
	}

	if card.ShowQR {
		c.renderQR(dc, width, height, scale, shareURL)
	}
}

func (c *Compositor) renderQR(dc *gg.Context, width, height int, scale float64, shareURL string) {
	payload := shareURL
	if payload == "" {
		payload = "https://curecircle.app"
	}

	size := int(math.Round(88 * scale))
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("qr generation failed, omitting block", "error", err)
		}
		return
	}
	q.DisableBorder = true

	margin := int(math.Round(20 * scale))
	dc.DrawImage(q.Image(size), width-size-margin, height-size-margin)
}

// fetchedCrest is crest art ready to composite.
type fetchedCrest struct {
	img     *image.NRGBA
	pos     image.Point
	opacity float64
}

// renderCrests draws crest overlays, substituting the placeholder glyph for
// unresolved ids and failed fetches. Fetched art composites after the vector
// layers so per-crest opacity applies to the whole image.
func (c *Compositor) renderCrests(ctx context.Context, dc *gg.Context, card *domain.CardDocument, width, height int, scale float64) image.Image {
	accent := parseColorOr(card.AccentColor, color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff})

	var fetched []fetchedCrest
	for _, crest := range card.Crests {
		px := float64(width) * crest.XPercent / 100
		py := float64(height) * crest.YPercent / 100

		entry, ok := registry.LookupCrest(crest.CrestID)
		if !ok {
			drawCrestPlaceholder(dc, crest, px, py, scale, accent)
			continue
		}

		img, err := c.fetcher.Fetch(ctx, resolveAssetURL(c.assetURL, entry.ImageURL))
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("crest art unavailable, using placeholder", "crest_id", crest.CrestID, "error", err)
			}
			drawCrestPlaceholder(dc, crest, px, py, scale, accent)
			continue
		}

		size := int(math.Round(crest.SizePx * scale))
		if size <= 0 {
			continue
		}
		art := imaging.Fit(img, size, size, imaging.Lanczos)
		if crest.RotationDegrees != 0 {
			art = imaging.Rotate(art, -crest.RotationDegrees, color.NRGBA{})
		}

		opacity := crest.Opacity
		if opacity <= 0 || opacity > 1 {
			opacity = 1
		}

		b := art.Bounds()
		fetched = append(fetched, fetchedCrest{
			img:     art,
			pos:     image.Pt(int(math.Round(px))-b.Dx()/2, int(math.Round(py))-b.Dy()/2),
			opacity: opacity,
		})
	}

	out := imaging.Clone(dc.Image())
	for _, f := range fetched {
		out = imaging.Overlay(out, f.img, f.pos, f.opacity)
	}
	return out
}

func parseColorOr(hex string, fallback color.NRGBA) color.NRGBA {
	col, err := style.ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return col
}

func resolveAssetURL(assetURL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	if assetURL == "" {
		return ref
	}
	return strings.TrimRight(assetURL, "/") + ref
}
