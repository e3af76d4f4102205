// Package export captures card documents as shareable PNG blobs. A capture
// walks a small state machine: Idle, Capturing, then one of Succeeded,
// Degraded, or Failed, and back to Idle. Failure never escapes as a panic or
// a wedged state; the caller always gets a usable share payload, even if it
// is only a copyable URL.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/render"
)

// State is the per-owner export state.
type State string

// Export states.
const (
	StateIdle      State = "idle"
	StateCapturing State = "capturing"
	StateSucceeded State = "succeeded"
	StateDegraded  State = "degraded"
	StateFailed    State = "failed"
)

// Capture tuning.
const (
	// captureScale renders at 2x for crisp shared images.
	captureScale = 2.0
	// retryScale is the degraded fallback resolution.
	retryScale = 1.0
	// filterAttenuation caps the filter overlay at 35% of its live opacity
	// so blended washes do not crush the rasterized capture.
	filterAttenuation = 0.35
)

// ErrExportInProgress rejects a second capture while one is running.
var ErrExportInProgress = errors.Conflict("an export is already in progress")

// Renderer rasterizes a card. Implemented by render.Compositor.
type Renderer interface {
	Render(ctx context.Context, card *domain.CardDocument, opts render.Options) (image.Image, error)
}

// BlobStore persists the captured PNG and serves it publicly.
type BlobStore interface {
	Save(name string, r io.Reader) (publicURL string, err error)
	Delete(name string) error
}

// Result is the share payload of one capture.
type Result struct {
	State          State  `json:"state"`
	BlobName       string `json:"blob_name,omitempty"`
	DownloadURL    string `json:"download_url,omitempty"`
	SocialShareURL string `json:"social_share_url,omitempty"`
	CopyText       string `json:"copy_text,omitempty"`
	CopyURL        string `json:"copy_url"`
}

// Pipeline runs captures and tracks per-owner state plus the temporary
// blobs awaiting cleanup.
type Pipeline struct {
	renderer     Renderer
	blobs        BlobStore
	shareBase    string // public base URL for share pages
	imageTimeout time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	states map[string]State
	temp   map[string]time.Time // blob name -> creation time
}

// New builds a pipeline. imageTimeout bounds network image fetching during
// a capture; zero means 15s.
func New(renderer Renderer, blobs BlobStore, shareBase string, imageTimeout time.Duration, logger *slog.Logger) *Pipeline {
	if imageTimeout <= 0 {
		imageTimeout = 15 * time.Second
	}
	return &Pipeline{
		renderer:     renderer,
		blobs:        blobs,
		shareBase:    shareBase,
		imageTimeout: imageTimeout,
		logger:       logger,
		states:       make(map[string]State),
		temp:         make(map[string]time.Time),
	}
}

// State reports the owner's current export state.
func (p *Pipeline) State(ownerID string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.states[ownerID]; ok {
		return s
	}
	return StateIdle
}

// Export captures the card and returns the share payload. Only one capture
// per owner runs at a time. The returned result's state is Succeeded,
// Degraded, or Failed; an error return means the capture never started.
func (p *Pipeline) Export(ctx context.Context, card *domain.CardDocument, shareToken string) (*Result, error) {
	if !p.begin(card.OwnerID) {
		return nil, ErrExportInProgress
	}

	result := p.capture(ctx, card, shareToken)

	p.finish(card.OwnerID, result.State)
	return result, nil
}

// begin moves the owner to Capturing, refusing if a capture is running.
func (p *Pipeline) begin(ownerID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.states[ownerID] == StateCapturing {
		return false
	}
	p.states[ownerID] = StateCapturing
	return true
}

// finish records the terminal state, then releases the owner back to Idle.
// The terminal state stays readable until the next capture begins.
func (p *Pipeline) finish(ownerID string, terminal State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[ownerID] = terminal
}

func (p *Pipeline) capture(ctx context.Context, card *domain.CardDocument, shareToken string) *Result {
	shareURL := p.shareURL(shareToken)

	img, degraded, err := p.renderWithRetry(ctx, card, shareURL)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("export capture failed", "owner_id", card.OwnerID, "error", err)
		}
		return p.failedResult(shareURL)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if p.logger != nil {
			p.logger.Error("export encode failed", "owner_id", card.OwnerID, "error", err)
		}
		return p.failedResult(shareURL)
	}

	blobName := fmt.Sprintf("exports/%s.png", shareToken)
	downloadURL, err := p.blobs.Save(blobName, &buf)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("export blob save failed", "owner_id", card.OwnerID, "error", err)
		}
		return p.failedResult(shareURL)
	}
	p.trackTemp(blobName)

	state := StateSucceeded
	if degraded {
		state = StateDegraded
	}

	return &Result{
		State:          state,
		BlobName:       blobName,
		DownloadURL:    downloadURL,
		SocialShareURL: socialShareURL(card.DisplayName, shareURL),
		CopyText:       copyText(card.DisplayName, shareURL),
		CopyURL:        shareURL,
	}
}

// renderWithRetry captures at 2x, then retries once at 1x with broken
// images skipped. The retry result is flagged degraded.
func (p *Pipeline) renderWithRetry(ctx context.Context, card *domain.CardDocument, shareURL string) (image.Image, bool, error) {
	opts := render.Options{
		Scale:              captureScale,
		FilterOpacityScale: filterAttenuation,
		ShareURL:           shareURL,
	}

	captureCtx, cancel := context.WithTimeout(ctx, p.imageTimeout)
	img, err := p.renderer.Render(captureCtx, card, opts)
	cancel()
	if err == nil {
		return img, false, nil
	}

	if p.logger != nil {
		p.logger.Warn("capture failed, retrying degraded", "owner_id", card.OwnerID, "error", err)
	}

	opts.Scale = retryScale
	opts.SkipBrokenImages = true

	retryCtx, cancel := context.WithTimeout(ctx, p.imageTimeout)
	defer cancel()
	img, retryErr := p.renderer.Render(retryCtx, card, opts)
	if retryErr != nil {
		return nil, false, fmt.Errorf("capture failed twice: %w", retryErr)
	}
	return img, true, nil
}

// failedResult is the everything-went-wrong payload: the share URL alone,
// ready for the clipboard.
func (p *Pipeline) failedResult(shareURL string) *Result {
	return &Result{State: StateFailed, CopyURL: shareURL}
}

func (p *Pipeline) shareURL(shareToken string) string {
	base := p.shareBase
	if base == "" {
		base = "https://curecircle.app"
	}
	return fmt.Sprintf("%s/c/%s", base, shareToken)
}

func (p *Pipeline) trackTemp(blobName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.temp[blobName] = time.Now()
}

// Release deletes one temporary export blob, typically after the client
// confirms its download.
func (p *Pipeline) Release(blobName string) error {
	p.mu.Lock()
	delete(p.temp, blobName)
	p.mu.Unlock()
	return p.blobs.Delete(blobName)
}

// CleanupExpired deletes export blobs older than ttl and returns how many
// went away. Blobs whose delete fails stay tracked for the next sweep.
func (p *Pipeline) CleanupExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	p.mu.Lock()
	var doomed []string
	for name, created := range p.temp {
		if created.Before(cutoff) {
			doomed = append(doomed, name)
		}
	}
	p.mu.Unlock()

	removed := 0
	for _, name := range doomed {
		if err := p.blobs.Delete(name); err != nil {
			if p.logger != nil {
				p.logger.Warn("export blob cleanup failed", "blob", name, "error", err)
			}
			continue
		}
		p.mu.Lock()
		delete(p.temp, name)
		p.mu.Unlock()
		removed++
	}
	return removed
}

// RunJanitor sweeps expired export blobs until ctx is canceled.
func (p *Pipeline) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.CleanupExpired(ttl); n > 0 && p.logger != nil {
				p.logger.Info("cleaned up expired export blobs", "count", n)
			}
		}
	}
}

func socialShareURL(displayName, shareURL string) string {
	q := url.Values{}
	q.Set("text", fmt.Sprintf("%s's CureCircle card", displayName))
	q.Set("url", shareURL)
	return "https://twitter.com/intent/tweet?" + q.Encode()
}

func copyText(displayName, shareURL string) string {
	return fmt.Sprintf("Check out %s's CureCircle card! %s", displayName, shareURL)
}
