package renderer

import "image/color"

// Theme is the colour set behind a palette name.
type Theme struct {
	Background color.RGBA
	Accent     color.RGBA
	Text       color.RGBA
}

var themes = map[string]Theme{
	"rose":     {Background: rgb(0x2a, 0x0a, 0x18), Accent: rgb(0xff, 0x6b, 0x9d), Text: rgb(0xff, 0xe4, 0xee)},
	"lavender": {Background: rgb(0x1e, 0x16, 0x2e), Accent: rgb(0xb3, 0x9d, 0xdb), Text: rgb(0xf1, 0xea, 0xff)},
	"sunset":   {Background: rgb(0x2b, 0x10, 0x0c), Accent: rgb(0xff, 0x8c, 0x42), Text: rgb(0xff, 0xf1, 0xd6)},
	"aurora":   {Background: rgb(0x06, 0x1a, 0x1f), Accent: rgb(0x4d, 0xf2, 0xb5), Text: rgb(0xe0, 0xff, 0xf6)},
	"ocean":    {Background: rgb(0x05, 0x14, 0x2b), Accent: rgb(0x3a, 0xa0, 0xff), Text: rgb(0xde, 0xef, 0xff)},
	"ember":    {Background: rgb(0x1c, 0x06, 0x04), Accent: rgb(0xff, 0x45, 0x1f), Text: rgb(0xff, 0xe0, 0xcc)},
	"mint":     {Background: rgb(0x0b, 0x1f, 0x16), Accent: rgb(0x98, 0xff, 0xc8), Text: rgb(0xef, 0xff, 0xf6)},
	"noir":     {Background: rgb(0x0a, 0x0a, 0x0a), Accent: rgb(0xe6, 0xe6, 0xe6), Text: rgb(0xff, 0xff, 0xff)},
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// ThemeFor returns the theme of a palette name. Unknown names fall back to
// noir.
func ThemeFor(palette string) Theme {
	if t, ok := themes[palette]; ok {
		return t
	}
	return themes["noir"]
}
