package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
)

// stubFetcher serves a fixed image or error for every URL.
type stubFetcher struct {
	img image.Image
	err error
}

func (f *stubFetcher) Fetch(context.Context, string) (image.Image, error) {
	return f.img, f.err
}

func testCard() *domain.CardDocument {
	card := domain.NewDefaultCard("user-1", domain.ProfileHints{
		DisplayName:       "Nozomi",
		FavoriteCharacter: "Cure Dream",
	})
	card.FavoriteSeries = "Yes! PreCure 5"
	return card
}

func TestRender_GradientCardDimensions(t *testing.T) {
	c := NewCompositor(&stubFetcher{err: errors.New("no network in this test")}, "", nil)

	img, err := c.Render(context.Background(), testCard(), Options{})
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, BaseWidth, bounds.Dx())
	assert.Equal(t, BaseHeight, bounds.Dy())
}

func TestRender_ScaleDoublesCanvas(t *testing.T) {
	c := NewCompositor(&stubFetcher{err: errors.New("offline")}, "", nil)

	img, err := c.Render(context.Background(), testCard(), Options{Scale: 2})
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 2*BaseWidth, bounds.Dx())
	assert.Equal(t, 2*BaseHeight, bounds.Dy())
}

func TestRender_BrokenBackgroundImageFails(t *testing.T) {
	c := NewCompositor(&stubFetcher{err: errors.New("gone")}, "", nil)

	card := testCard()
	card.Background = domain.BackgroundSpec{
		Mode:  domain.BackgroundImage,
		Image: &domain.ImageBackground{SourceURL: "https://img.example/gone.png", Scale: 1, Opacity: 1},
	}

	_, err := c.Render(context.Background(), card, Options{})
	assert.Error(t, err)
}

func TestRender_BrokenBackgroundImageSkipped(t *testing.T) {
	c := NewCompositor(&stubFetcher{err: errors.New("gone")}, "", nil)

	card := testCard()
	card.Background = domain.BackgroundSpec{
		Mode:  domain.BackgroundImage,
		Image: &domain.ImageBackground{SourceURL: "https://img.example/gone.png", Scale: 1, Opacity: 1},
	}

	img, err := c.Render(context.Background(), card, Options{SkipBrokenImages: true})
	require.NoError(t, err, "degraded pass substitutes the default gradient")
	assert.Equal(t, BaseWidth, img.Bounds().Dx())
}

func TestRender_ImageBackgroundWithFilter(t *testing.T) {
	art := imaging.New(64, 64, color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff})
	c := NewCompositor(&stubFetcher{img: art}, "", nil)

	card := testCard()
	card.Background = domain.BackgroundSpec{
		Mode: domain.BackgroundImage,
		Image: &domain.ImageBackground{
			SourceURL: "https://img.example/bg.png",
			Scale:     1, Opacity: 1,
			PositionXPercent: 50, PositionYPercent: 50,
			FilterID: "vintage",
		},
	}

	img, err := c.Render(context.Background(), card, Options{})
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestRender_UnknownCrestUsesPlaceholder(t *testing.T) {
	c := NewCompositor(&stubFetcher{err: errors.New("offline")}, "", nil)

	card := testCard()
	card.Crests = nil
	card.AddCrest("retired_series")

	img, err := c.Render(context.Background(), card, Options{})
	require.NoError(t, err)
	assert.NotNil(t, img)
}

func TestBlendChannel(t *testing.T) {
	// multiply: 0.5 * 0.5 = 0.25
	assert.Equal(t, uint8(64), blendChannel(128, 128, BlendMultiply))
	// screen: 1 - 0.5*0.5 = 0.75
	assert.Equal(t, uint8(192), blendChannel(128, 128, BlendScreen))
	// multiply by white is identity
	assert.Equal(t, uint8(200), blendChannel(200, 255, BlendMultiply))
	// screen with black is identity
	assert.Equal(t, uint8(200), blendChannel(200, 0, BlendScreen))
	// normal replaces
	assert.Equal(t, uint8(10), blendChannel(200, 10, BlendNormal))
}

func TestBlendImage_OpacityZeroIsNoop(t *testing.T) {
	base := imaging.New(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	overlay := imaging.New(4, 4, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	out := blendImage(base, overlay, BlendMultiply, 0)
	assert.Equal(t, base.Pix, out.Pix)
}

func TestBlendImage_FullOpacityNormalReplaces(t *testing.T) {
	base := imaging.New(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	overlay := imaging.New(2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	out := blendImage(base, overlay, BlendNormal, 1)
	got := out.NRGBAAt(0, 0)
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, got)
}

func TestParseBlendMode(t *testing.T) {
	assert.Equal(t, BlendMultiply, ParseBlendMode("multiply"))
	assert.Equal(t, BlendScreen, ParseBlendMode("Screen"))
	assert.Equal(t, BlendOverlay, ParseBlendMode("overlay"))
	assert.Equal(t, BlendNormal, ParseBlendMode("normal"))
	assert.Equal(t, BlendNormal, ParseBlendMode("color-dodge"))
}

func TestRasterizeFill_Solid(t *testing.T) {
	img, err := rasterizeFill(8, 8, "#336699")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, img.NRGBAAt(4, 4))
}

func TestRasterizeFill_GradientEndpoints(t *testing.T) {
	img, err := rasterizeFill(8, 64, "linear-gradient(180deg, #ff0000 0%, #0000ff 100%)")
	require.NoError(t, err)

	top := img.NRGBAAt(4, 1)
	bottom := img.NRGBAAt(4, 62)
	assert.Greater(t, top.R, top.B, "top of a to-bottom gradient leans to the first stop")
	assert.Greater(t, bottom.B, bottom.R, "bottom leans to the last stop")
}

func TestRasterizeFill_BadFill(t *testing.T) {
	_, err := rasterizeFill(8, 8, "paisley")
	assert.Error(t, err)
}

func TestHTTPFetcher_FetchAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := imaging.New(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		require.NoError(t, png.Encode(w, img))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0)
	img, err := f.Fetch(context.Background(), srv.URL+"/pic.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0)
	_, err := f.Fetch(context.Background(), srv.URL+"/gone.png")
	assert.Error(t, err)
}

func TestHTTPFetcher_DataURI(t *testing.T) {
	var buf bytes.Buffer
	img := imaging.New(2, 2, color.NRGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	f := NewHTTPFetcher(0)
	got, err := f.Fetch(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Bounds().Dx())
}

func TestHTTPFetcher_MalformedDataURI(t *testing.T) {
	f := NewHTTPFetcher(0)
	_, err := f.Fetch(context.Background(), "data:image/png;base64")
	assert.Error(t, err)
}

func TestResolveAssetURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/assets/x.png",
		resolveAssetURL("https://cdn.example", "/assets/x.png"))
	assert.Equal(t, "https://other.example/y.png",
		resolveAssetURL("https://cdn.example", "https://other.example/y.png"))
	assert.Equal(t, "/assets/x.png", resolveAssetURL("", "/assets/x.png"))
}
