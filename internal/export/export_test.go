package export

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/render"
)

// scriptedRenderer fails the first failures calls, then succeeds. It records
// the options of every call.
type scriptedRenderer struct {
	mu       sync.Mutex
	failures int
	calls    []render.Options
}

func (r *scriptedRenderer) Render(_ context.Context, _ *domain.CardDocument, opts render.Options) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("raster error")
	}
	return imaging.New(4, 4, color.NRGBA{A: 255}), nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	saveErr error
	deletes []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string][]byte)}
}

func (s *fakeBlobStore) Save(name string, r io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved[name] = data
	return "https://blobs.example/" + name, nil
}

func (s *fakeBlobStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, name)
	delete(s.saved, name)
	return nil
}

func newTestPipeline(r Renderer, b BlobStore) *Pipeline {
	return New(r, b, "https://cure.example", time.Second, nil)
}

func exportCard() *domain.CardDocument {
	return domain.NewDefaultCard("user-1", domain.ProfileHints{DisplayName: "Nozomi"})
}

func TestExport_Succeeds(t *testing.T) {
	renderer := &scriptedRenderer{}
	blobs := newFakeBlobStore()
	p := newTestPipeline(renderer, blobs)

	result, err := p.Export(context.Background(), exportCard(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, "exports/tok-1.png", result.BlobName)
	assert.Equal(t, "https://blobs.example/exports/tok-1.png", result.DownloadURL)
	assert.Equal(t, "https://cure.example/c/tok-1", result.CopyURL)
	assert.Contains(t, result.SocialShareURL, "twitter.com/intent/tweet")
	assert.Contains(t, result.CopyText, "Nozomi")
	assert.True(t, strings.HasPrefix(string(blobs.saved["exports/tok-1.png"]), "\x89PNG"))

	// Capture runs at 2x with attenuated filter opacity.
	require.Len(t, renderer.calls, 1)
	assert.Equal(t, 2.0, renderer.calls[0].Scale)
	assert.Equal(t, 0.35, renderer.calls[0].FilterOpacityScale)
	assert.False(t, renderer.calls[0].SkipBrokenImages)

	assert.Equal(t, StateSucceeded, p.State("user-1"))
}

func TestExport_RetryProducesDegraded(t *testing.T) {
	renderer := &scriptedRenderer{failures: 1}
	blobs := newFakeBlobStore()
	p := newTestPipeline(renderer, blobs)

	result, err := p.Export(context.Background(), exportCard(), "tok-2")
	require.NoError(t, err)

	assert.Equal(t, StateDegraded, result.State)
	assert.NotEmpty(t, result.DownloadURL)

	require.Len(t, renderer.calls, 2)
	assert.Equal(t, 1.0, renderer.calls[1].Scale, "retry drops to 1x")
	assert.True(t, renderer.calls[1].SkipBrokenImages, "retry skips broken images")
}

func TestExport_BothAttemptsFail(t *testing.T) {
	renderer := &scriptedRenderer{failures: 2}
	blobs := newFakeBlobStore()
	p := newTestPipeline(renderer, blobs)

	result, err := p.Export(context.Background(), exportCard(), "tok-3")
	require.NoError(t, err, "a failed capture is a result, not an error")

	assert.Equal(t, StateFailed, result.State)
	assert.Empty(t, result.DownloadURL)
	assert.Equal(t, "https://cure.example/c/tok-3", result.CopyURL, "clipboard URL survives total failure")
	assert.Empty(t, blobs.saved, "no blob is left behind")
	assert.Equal(t, StateFailed, p.State("user-1"))
}

func TestExport_BlobSaveFailure(t *testing.T) {
	renderer := &scriptedRenderer{}
	blobs := newFakeBlobStore()
	blobs.saveErr = errors.New("disk full")
	p := newTestPipeline(renderer, blobs)

	result, err := p.Export(context.Background(), exportCard(), "tok-4")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.State)
	assert.NotEmpty(t, result.CopyURL)
}

func TestExport_RejectsConcurrentCapture(t *testing.T) {
	p := newTestPipeline(&scriptedRenderer{}, newFakeBlobStore())
	require.True(t, p.begin("user-1"))

	_, err := p.Export(context.Background(), exportCard(), "tok-5")
	assert.ErrorIs(t, err, ErrExportInProgress)

	p.finish("user-1", StateIdle)
	_, err = p.Export(context.Background(), exportCard(), "tok-5")
	assert.NoError(t, err)
}

func TestExport_StateIdleForUnknownOwner(t *testing.T) {
	p := newTestPipeline(&scriptedRenderer{}, newFakeBlobStore())
	assert.Equal(t, StateIdle, p.State("nobody"))
}

func TestRelease_DeletesBlob(t *testing.T) {
	blobs := newFakeBlobStore()
	p := newTestPipeline(&scriptedRenderer{}, blobs)

	_, err := p.Export(context.Background(), exportCard(), "tok-6")
	require.NoError(t, err)

	require.NoError(t, p.Release("exports/tok-6.png"))
	assert.Empty(t, blobs.saved)
}

func TestCleanupExpired(t *testing.T) {
	blobs := newFakeBlobStore()
	p := newTestPipeline(&scriptedRenderer{}, blobs)

	_, err := p.Export(context.Background(), exportCard(), "tok-old")
	require.NoError(t, err)

	// Nothing is old enough yet.
	assert.Zero(t, p.CleanupExpired(time.Hour))

	// Backdate the blob and sweep again.
	p.mu.Lock()
	p.temp["exports/tok-old.png"] = time.Now().Add(-2 * time.Hour)
	p.mu.Unlock()

	assert.Equal(t, 1, p.CleanupExpired(time.Hour))
	assert.Empty(t, blobs.saved)
}
