package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
)

type sampleMark struct {
	Kind     string  `json:"kind" validate:"required,oneof=heart star sparkle"`
	ColorHex string  `json:"color_hex" validate:"required,hexcolor"`
	Opacity  float64 `json:"opacity" validate:"gte=0,lte=1"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(sampleMark{Kind: "heart", ColorHex: "#ff66aa", Opacity: 0.8})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(sampleMark{Kind: "squiggle", ColorHex: "pink", Opacity: 2})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "kind")
	assert.Contains(t, details, "color_hex")
	assert.Contains(t, details, "opacity")
	assert.Contains(t, details["kind"], "must be one of")
}

func TestValidate_JSONTagNames(t *testing.T) {
	v := New()
	err := v.Validate(sampleMark{Kind: "star", ColorHex: "", Opacity: 0.5})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)
	_, usesJSONName := details["color_hex"]
	assert.True(t, usesJSONName, "field errors should be keyed by json tag")
}
