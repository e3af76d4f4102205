package liveness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func TestCheckLive_DataURI(t *testing.T) {
	c := NewChecker(config.LivenessConfig{}, nil)
	assert.True(t, c.CheckLive(context.Background(), "data:image/png;base64,iVBORw0KGgo="))
}

func TestCheckLive_EmptyAndGarbage(t *testing.T) {
	c := NewChecker(config.LivenessConfig{}, nil)
	ctx := context.Background()

	assert.False(t, c.CheckLive(ctx, ""))
	assert.False(t, c.CheckLive(ctx, "not a url at all\x00"))
	assert.False(t, c.CheckLive(ctx, "ftp://example.com/pic.png"))
}

func TestCheckLive_BlobHostUsesHead(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	host := mustHost(t, srv.URL)
	c := NewChecker(config.LivenessConfig{BlobHost: host}, nil)

	assert.True(t, c.CheckLive(context.Background(), srv.URL+"/gallery/pic.png"))
	assert.Equal(t, http.MethodHead, method)
}

func TestCheckLive_RemoteGetSniffsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write(pngMagic)
	}))
	defer srv.Close()

	c := NewChecker(config.LivenessConfig{}, nil)
	assert.True(t, c.CheckLive(context.Background(), srv.URL+"/pic.png"))
}

func TestCheckLive_TrickledBodyStaysLive(t *testing.T) {
	// Hosts that flush image bytes in tiny chunks must not read as empty or
	// be sniffed from the first chunk alone.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, b := range pngMagic {
			w.Write([]byte{b})
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := NewChecker(config.LivenessConfig{}, nil)
	assert.True(t, c.CheckLive(context.Background(), srv.URL+"/pic.png"))
}

func TestCheckLive_EmptyBodyIsDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewChecker(config.LivenessConfig{}, nil)
	assert.False(t, c.CheckLive(context.Background(), srv.URL+"/pic.png"))
}

func TestCheckLive_RemoteNonImageIsDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not found, but with a 200</html>"))
	}))
	defer srv.Close()

	c := NewChecker(config.LivenessConfig{}, nil)
	assert.False(t, c.CheckLive(context.Background(), srv.URL+"/pic.png"))
}

func TestCheckLive_RemoteErrorStatusIsDead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewChecker(config.LivenessConfig{}, nil)
	assert.False(t, c.CheckLive(context.Background(), srv.URL+"/gone.png"))
}

func mustHost(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Host
}

// Repairer tests use in-memory fakes for the store, prober, and notifier.

type fakeProber struct {
	live   bool
	probes int
}

func (p *fakeProber) CheckLive(context.Context, string) bool {
	p.probes++
	return p.live
}

type fakeCardStore struct {
	mu    sync.Mutex
	cards map[string]*domain.CardDocument
	saves int
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[string]*domain.CardDocument)}
}

func (s *fakeCardStore) GetCard(ownerID string) (*domain.CardDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.cards[ownerID]
	return &c, nil
}

func (s *fakeCardStore) SaveCard(actorID string, card *domain.CardDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	stored := *card
	s.cards[actorID] = &stored
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) BackgroundRepaired(ownerID, imageURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, ownerID+" "+imageURL)
}

func cardWithImage(ownerID, imageURL string) *domain.CardDocument {
	card := domain.NewDefaultCard(ownerID, domain.ProfileHints{})
	card.Background = domain.BackgroundSpec{
		Mode:  domain.BackgroundImage,
		Image: &domain.ImageBackground{SourceURL: imageURL, Scale: 1, Opacity: 1},
	}
	return card
}

func TestRepairCard_DemotesDeadImageOnce(t *testing.T) {
	store := newFakeCardStore()
	store.cards["user-1"] = cardWithImage("user-1", "https://img.example/gone.png")
	notifier := &recordingNotifier{}
	r := NewRepairer(&fakeProber{live: false}, store, notifier, nil)

	repaired, err := r.RepairCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, repaired)

	got, _ := store.GetCard("user-1")
	assert.Equal(t, domain.DefaultBackground(), got.Background)
	assert.Equal(t, 1, store.saves, "exactly one repair write")
	assert.Len(t, notifier.calls, 1, "exactly one notification")

	// Second pass for the same owner+URL does nothing; the background is
	// already a gradient and the pair is tracked.
	repaired, err = r.RepairCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, 1, store.saves)
	assert.Len(t, notifier.calls, 1)
}

func TestRepairCard_LiveImageUntouched(t *testing.T) {
	store := newFakeCardStore()
	store.cards["user-1"] = cardWithImage("user-1", "https://img.example/fine.png")
	r := NewRepairer(&fakeProber{live: true}, store, nil, nil)

	repaired, err := r.RepairCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Zero(t, store.saves)
}

func TestRepairCard_NonImageBackgroundSkipsProbe(t *testing.T) {
	store := newFakeCardStore()
	store.cards["user-1"] = domain.NewDefaultCard("user-1", domain.ProfileHints{})
	prober := &fakeProber{live: false}
	r := NewRepairer(prober, store, nil, nil)

	repaired, err := r.RepairCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Zero(t, prober.probes)
}

// raceProber flips the stored card while the probe is in flight, simulating
// the user switching backgrounds mid-check.
type raceProber struct {
	store *fakeCardStore
	owner string
}

func (p *raceProber) CheckLive(context.Context, string) bool {
	p.store.mu.Lock()
	p.store.cards[p.owner].Background = domain.BackgroundSpec{
		Mode: domain.BackgroundSolid, Color: "#112233",
	}
	p.store.mu.Unlock()
	return false
}

func TestRepairCard_LateResultAfterChangeIsNoop(t *testing.T) {
	store := newFakeCardStore()
	store.cards["user-1"] = cardWithImage("user-1", "https://img.example/gone.png")
	r := NewRepairer(&raceProber{store: store, owner: "user-1"}, store, nil, nil)

	repaired, err := r.RepairCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, repaired, "a probe result arriving after the background changed must not apply")
	assert.Zero(t, store.saves)

	got, _ := store.GetCard("user-1")
	assert.Equal(t, domain.BackgroundSolid, got.Background.Mode)
}

func TestRepairBackground(t *testing.T) {
	r := NewRepairer(&fakeProber{live: false}, newFakeCardStore(), nil, nil)

	spec := domain.BackgroundSpec{
		Mode:  domain.BackgroundImage,
		Image: &domain.ImageBackground{SourceURL: "https://img.example/gone.png"},
	}
	got, repaired := r.RepairBackground(context.Background(), spec)
	assert.True(t, repaired)
	assert.Equal(t, domain.DefaultBackground(), got)

	solid := domain.BackgroundSpec{Mode: domain.BackgroundSolid, Color: "#fff"}
	got, repaired = r.RepairBackground(context.Background(), solid)
	assert.False(t, repaired)
	assert.Equal(t, solid, got)
}
