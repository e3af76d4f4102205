// Package liveness probes whether card background images still resolve, and
// repairs cards whose image went away.
package liveness

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/curecircle/curecircle-server/internal/config"
)

// Prober reports whether an image URL still serves a usable image.
type Prober interface {
	CheckLive(ctx context.Context, imageURL string) bool
}

// Checker probes image URLs. Data URIs are self-contained and never probed.
// URLs under the instance's own blob host get a cheap metadata-only HEAD;
// anything else gets a GET with a content sniff, since third-party hosts
// routinely mishandle HEAD.
type Checker struct {
	client   *http.Client
	blobHost string
	logger   *slog.Logger
}

// NewChecker builds a checker from the liveness configuration.
func NewChecker(cfg config.LivenessConfig, logger *slog.Logger) *Checker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Checker{
		client:   &http.Client{Timeout: timeout},
		blobHost: cfg.BlobHost,
		logger:   logger,
	}
}

// CheckLive implements Prober.
func (c *Checker) CheckLive(ctx context.Context, imageURL string) bool {
	if imageURL == "" {
		return false
	}
	if strings.HasPrefix(imageURL, "data:") {
		return true
	}

	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false
	}

	if c.blobHost != "" && parsed.Host == c.blobHost {
		return c.probeHead(ctx, imageURL)
	}
	return c.probeGet(ctx, imageURL)
}

func (c *Checker) probeHead(ctx context.Context, imageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logDead(imageURL, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Checker) probeGet(ctx context.Context, imageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logDead(imageURL, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	// Sniff the first bytes instead of trusting Content-Type headers.
	// ReadFull retries short reads, so a Read returning (0, nil) before data
	// arrives never counts as an empty body; only a true EOF at zero bytes
	// marks the image dead.
	head := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(head[:n]), "image/")
}

func (c *Checker) logDead(imageURL string, err error) {
	if c.logger != nil {
		c.logger.Debug("image probe failed", "url", imageURL, "error", err)
	}
}
