package render

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFont *truetype.Font
	boldFont    *truetype.Font

	faceCache = struct {
		sync.Mutex
		faces map[faceKey]font.Face
	}{faces: map[faceKey]font.Face{}}
)

type faceKey struct {
	bold bool
	size float64
}

func init() {
	var err error
	regularFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Errorf("parse regular font: %w", err))
	}
	boldFont, err = truetype.Parse(gobold.TTF)
	if err != nil {
		panic(fmt.Errorf("parse bold font: %w", err))
	}
}

func fontFace(size float64, bold bool) font.Face {
	faceCache.Lock()
	defer faceCache.Unlock()

	key := faceKey{bold: bold, size: size}
	if face, ok := faceCache.faces[key]; ok {
		return face
	}

	f := regularFont
	if bold {
		f = boldFont
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	faceCache.faces[key] = face
	return face
}
