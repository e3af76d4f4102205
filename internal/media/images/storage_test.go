package images

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)
	return s
}

func TestStorage_SaveGetDelete(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.Save("gallery/user-1/pic.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/gallery/user-1/pic.png", url)

	data, err := s.Get("gallery/user-1/pic.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	assert.True(t, s.Exists("gallery/user-1/pic.png"))

	require.NoError(t, s.Delete("gallery/user-1/pic.png"))
	assert.False(t, s.Exists("gallery/user-1/pic.png"))

	// Deleting again is a no-op.
	require.NoError(t, s.Delete("gallery/user-1/pic.png"))
}

func TestStorage_List(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save("gallery/user-1/a.png", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = s.Save("gallery/user-1/b.png", strings.NewReader("b"))
	require.NoError(t, err)
	_, err = s.Save("gallery/user-2/c.png", strings.NewReader("c"))
	require.NoError(t, err)

	names, err := s.List("gallery/user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gallery/user-1/a.png", "gallery/user-1/b.png"}, names)

	empty, err := s.List("gallery/nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStorage_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save("../outside.png", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Get("gallery/../../etc/passwd")
	assert.Error(t, err)
}

func TestStorage_Hash(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save("a.png", strings.NewReader("same"))
	require.NoError(t, err)
	_, err = s.Save("b.png", strings.NewReader("same"))
	require.NoError(t, err)

	ha, err := s.Hash("a.png")
	require.NoError(t, err)
	hb, err := s.Hash("b.png")
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff})
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessUpload(t *testing.T) {
	p, err := ProcessUpload(testPNG(t, 100, 50))
	require.NoError(t, err)

	assert.Equal(t, 100, p.Width)
	assert.Equal(t, 50, p.Height)
	assert.NotEmpty(t, p.BlurHash)
	assert.True(t, bytes.HasPrefix(p.PNG, []byte("\x89PNG")))
}

func TestProcessUpload_DownscalesOversized(t *testing.T) {
	p, err := ProcessUpload(testPNG(t, 4096, 1024))
	require.NoError(t, err)

	assert.Equal(t, maxDimension, p.Width)
	assert.Equal(t, 512, p.Height, "aspect ratio preserved")
}

func TestProcessUpload_Rejects(t *testing.T) {
	_, err := ProcessUpload(nil)
	assert.Error(t, err)

	_, err = ProcessUpload([]byte("not an image"))
	assert.Error(t, err)

	_, err = ProcessUpload(make([]byte, maxUploadBytes+1))
	assert.Error(t, err)
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	img := imaging.New(32, 32, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})

	a, err := ComputeBlurHash(img)
	require.NoError(t, err)
	b, err := ComputeBlurHash(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
