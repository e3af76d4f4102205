package registry

// Crest is a static catalog entry for a series crest overlay.
type Crest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url"`
}

// crestCatalog is ordered by in-universe release year, matching the gradient
// preset table.
var crestCatalog = []Crest{
	{ID: "futari_wa", DisplayName: "Futari wa", ImageURL: "/assets/crests/futari_wa.png"},
	{ID: "splash_star", DisplayName: "Splash Star", ImageURL: "/assets/crests/splash_star.png"},
	{ID: "yes_precure5", DisplayName: "Yes! Pretty Cure 5", ImageURL: "/assets/crests/yes_precure5.png"},
	{ID: "fresh", DisplayName: "Fresh", ImageURL: "/assets/crests/fresh.png"},
	{ID: "heartcatch", DisplayName: "Heartcatch", ImageURL: "/assets/crests/heartcatch.png"},
	{ID: "suite", DisplayName: "Suite", ImageURL: "/assets/crests/suite.png"},
	{ID: "smile", DisplayName: "Smile", ImageURL: "/assets/crests/smile.png"},
	{ID: "dokidoki", DisplayName: "Doki Doki", ImageURL: "/assets/crests/dokidoki.png"},
	{ID: "go_princess", DisplayName: "Go! Princess", ImageURL: "/assets/crests/go_princess.png"},
	{ID: "star_twinkle", DisplayName: "Star Twinkle", ImageURL: "/assets/crests/star_twinkle.png"},
	{ID: "tropical_rouge", DisplayName: "Tropical-Rouge", ImageURL: "/assets/crests/tropical_rouge.png"},
	{ID: "hirogaru_sky", DisplayName: "Hirogaru Sky", ImageURL: "/assets/crests/hirogaru_sky.png"},
}

var crestIndex = func() map[string]Crest {
	idx := make(map[string]Crest, len(crestCatalog))
	for _, c := range crestCatalog {
		idx[c.ID] = c
	}
	return idx
}()

// LookupCrest returns the catalog entry for id. An unresolved id is not an
// error: the renderer draws a placeholder glyph instead.
func LookupCrest(id string) (Crest, bool) {
	c, ok := crestIndex[id]
	return c, ok
}

// Crests returns the full crest catalog in display order.
func Crests() []Crest {
	out := make([]Crest, len(crestCatalog))
	copy(out, crestCatalog)
	return out
}
