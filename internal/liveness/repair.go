package liveness

import (
	"context"
	"log/slog"
	"sync"

	"github.com/curecircle/curecircle-server/internal/domain"
)

// CardStore is the slice of the document store the repairer needs.
type CardStore interface {
	GetCard(ownerID string) (*domain.CardDocument, error)
	SaveCard(actorID string, card *domain.CardDocument) error
}

// Notifier delivers the one-time "your background image went away" message.
type Notifier interface {
	BackgroundRepaired(ownerID, imageURL string)
}

// LogNotifier logs repairs instead of pushing them anywhere. Used when no
// delivery channel is wired.
type LogNotifier struct {
	Logger *slog.Logger
}

// BackgroundRepaired implements Notifier.
func (n LogNotifier) BackgroundRepaired(ownerID, imageURL string) {
	if n.Logger != nil {
		n.Logger.Info("background image repaired", "owner_id", ownerID, "url", imageURL)
	}
}

// Repairer demotes cards whose image background no longer resolves back to
// the default gradient. A given owner+URL pair is repaired and notified at
// most once per process lifetime; probes racing a background change are
// discarded by re-reading the card before applying.
type Repairer struct {
	prober   Prober
	store    CardStore
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	handled map[string]struct{}
}

// NewRepairer builds a repairer. notifier may be nil.
func NewRepairer(prober Prober, store CardStore, notifier Notifier, logger *slog.Logger) *Repairer {
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &Repairer{
		prober:   prober,
		store:    store,
		notifier: notifier,
		logger:   logger,
		handled:  make(map[string]struct{}),
	}
}

// RepairCard probes the card's background image and, if the probe fails,
// demotes the background to the default gradient and persists the change.
// Returns true when a repair was written.
//
// Call on card load and after image-field edits. Safe to call concurrently
// and repeatedly for the same owner.
func (r *Repairer) RepairCard(ctx context.Context, ownerID string) (bool, error) {
	card, err := r.store.GetCard(ownerID)
	if err != nil {
		return false, err
	}

	imageURL, ok := imageBackgroundURL(card)
	if !ok {
		return false, nil
	}

	key := ownerID + "\x00" + imageURL
	if r.alreadyHandled(key) {
		return false, nil
	}

	if r.prober.CheckLive(ctx, imageURL) {
		return false, nil
	}

	// The probe may have raced an edit. Re-read and only repair if the card
	// still points at the same dead URL.
	fresh, err := r.store.GetCard(ownerID)
	if err != nil {
		return false, err
	}
	currentURL, stillImage := imageBackgroundURL(fresh)
	if !stillImage || currentURL != imageURL {
		return false, nil
	}

	if !r.markHandled(key) {
		return false, nil // another goroutine repaired this pair first
	}

	fresh.Background = domain.DefaultBackground()
	if err := r.store.SaveCard(ownerID, fresh); err != nil {
		return false, err
	}

	if r.logger != nil {
		r.logger.Warn("demoted dead image background", "owner_id", ownerID, "url", imageURL)
	}
	r.notifier.BackgroundRepaired(ownerID, imageURL)

	return true, nil
}

// RepairBackground probes a profile-level background spec and returns the
// repaired spec when the image is dead. Pure with respect to storage; the
// caller persists.
func (r *Repairer) RepairBackground(ctx context.Context, spec domain.BackgroundSpec) (domain.BackgroundSpec, bool) {
	if spec.Mode != domain.BackgroundImage || spec.Image == nil || spec.Image.SourceURL == "" {
		return spec, false
	}
	if r.prober.CheckLive(ctx, spec.Image.SourceURL) {
		return spec, false
	}
	return domain.DefaultBackground(), true
}

func (r *Repairer) alreadyHandled(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handled[key]
	return ok
}

// markHandled records the pair and reports whether this caller won the race.
func (r *Repairer) markHandled(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handled[key]; ok {
		return false
	}
	r.handled[key] = struct{}{}
	return true
}

func imageBackgroundURL(card *domain.CardDocument) (string, bool) {
	bg := card.Background
	if bg.Mode != domain.BackgroundImage || bg.Image == nil || bg.Image.SourceURL == "" {
		return "", false
	}
	return bg.Image.SourceURL, true
}
