package store

import (
	"encoding/json/v2"
	"strconv"
	"strings"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/registry"
)

// normalizeCardRecord decodes a stored card, bridging shapes written by
// older builds:
//
//   - background stored as a bare string instead of an object, including the
//     legacy "#g<index>" sentinel meaning "gradient preset at that index"
//   - favorite_series stored as an array instead of a comma-joined string
//
// Current-shape records pass through the strict decode; only legacy records
// pay for the loose path. Records that cannot be bridged surface
// ErrMissingColumn so the caller sees schema drift, not a generic failure.
func normalizeCardRecord(raw []byte) (*domain.CardDocument, error) {
	var card domain.CardDocument
	if err := json.Unmarshal(raw, &card); err == nil {
		card.Background = normalizeBackground(card.Background)
		return &card, nil
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, ErrMissingColumn.WithMessage("stored card record is not a JSON object").WithCause(err)
	}

	card = domain.CardDocument{
		OwnerID:           looseString(loose, "owner_id"),
		DisplayName:       looseString(loose, "display_name"),
		Title:             looseString(loose, "title"),
		FavoriteCharacter: looseString(loose, "favorite_character"),
		FavoriteSeries:    looseSeries(loose["favorite_series"]),
		TextColor:         looseString(loose, "text_color"),
		AccentColor:       looseString(loose, "accent_color"),
		ShowQR:            looseBool(loose, "show_qr"),
	}

	card.Background = looseBackground(loose["background"])

	if err := reDecode(loose["marks"], &card.Marks); err != nil {
		return nil, ErrMissingColumn.WithMessage("stored card has unreadable marks").WithCause(err)
	}
	if err := reDecode(loose["crests"], &card.Crests); err != nil {
		return nil, ErrMissingColumn.WithMessage("stored card has unreadable crests").WithCause(err)
	}

	return &card, nil
}

// normalizeBackground resolves the legacy color sentinel inside an
// object-shaped background and fills a missing mode.
func normalizeBackground(bg domain.BackgroundSpec) domain.BackgroundSpec {
	if bg.Mode != "" {
		return bg
	}

	if presetID, ok := parseGradientSentinel(bg.Color); ok {
		return domain.BackgroundSpec{Mode: domain.BackgroundGradient, PresetID: presetID}
	}
	if bg.Color != "" {
		bg.Mode = domain.BackgroundSolid
		return bg
	}
	if bg.PresetID != "" {
		bg.Mode = domain.BackgroundGradient
		return bg
	}
	if bg.Image != nil {
		bg.Mode = domain.BackgroundImage
		return bg
	}
	return domain.DefaultBackground()
}

// looseBackground handles the background field of a legacy record, which may
// be a bare string, an object, or absent.
func looseBackground(v any) domain.BackgroundSpec {
	switch bg := v.(type) {
	case string:
		if presetID, ok := parseGradientSentinel(bg); ok {
			return domain.BackgroundSpec{Mode: domain.BackgroundGradient, PresetID: presetID}
		}
		if bg != "" {
			return domain.BackgroundSpec{Mode: domain.BackgroundSolid, Color: bg}
		}
		return domain.DefaultBackground()

	case map[string]any:
		var spec domain.BackgroundSpec
		if err := reDecode(bg, &spec); err != nil {
			return domain.DefaultBackground()
		}
		return normalizeBackground(spec)

	default:
		return domain.DefaultBackground()
	}
}

// parseGradientSentinel recognizes the legacy "#g<index>" color value and
// maps the index into the current preset registry. Out-of-range indexes fall
// back to the default preset.
func parseGradientSentinel(color string) (presetID string, ok bool) {
	if !strings.HasPrefix(color, "#g") {
		return "", false
	}
	idx, err := strconv.Atoi(color[2:])
	if err != nil {
		return "", false
	}

	presets := registry.Gradients()
	if idx < 0 || idx >= len(presets) {
		return registry.DefaultGradient().ID, true
	}
	return presets[idx].ID, true
}

// looseSeries accepts either the current comma-joined string or the legacy
// array shape.
func looseSeries(v any) string {
	switch series := v.(type) {
	case string:
		return series
	case []any:
		parts := make([]string, 0, len(series))
		for _, item := range series {
			if str, ok := item.(string); ok && str != "" {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func looseString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func looseBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// reDecode round-trips a loosely decoded value into a concrete type. Nil
// values decode to the zero value.
func reDecode(v any, dest any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
