package csscolor

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// hwbToColor converts hue/whiteness/blackness to sRGB. When whiteness and
// blackness sum past 1 the hue is irrelevant and the result is gray.
func hwbToColor(h, w, b float64) colorful.Color {
	if w+b >= 1 {
		gray := w / (w + b)
		return colorful.Color{R: gray, G: gray, B: gray}
	}
	base := colorful.Hsl(h, 1, 0.5)
	f := func(c float64) float64 { return c*(1-w-b) + w }
	return colorful.Color{R: f(base.R), G: f(base.G), B: f(base.B)}
}

func colorToHWB(c colorful.Color) (h, w, b float64) {
	h, _, _ = c.Hsl()
	w = math.Min(c.R, math.Min(c.G, c.B))
	b = 1 - math.Max(c.R, math.Max(c.G, c.B))
	return h, w, b
}

// okLabToColor converts OkLab coordinates to sRGB using the reference
// matrices of the OkLab color space.
func okLabToColor(l, a, b float64) colorful.Color {
	l2 := l + 0.3963377774*a + 0.2158037573*b
	m2 := l - 0.1055613458*a - 0.0638541728*b
	s2 := l - 0.0894841775*a - 1.2914855480*b

	l3 := l2 * l2 * l2
	m3 := m2 * m2 * m2
	s3 := s2 * s2 * s2

	return colorful.LinearRgb(
		4.0767416621*l3-3.3077115913*m3+0.2309699292*s3,
		-1.2684380046*l3+2.6097574011*m3-0.3413193965*s3,
		-0.0041960863*l3-0.7034186147*m3+1.7076147010*s3,
	)
}

func colorToOkLab(c colorful.Color) (l, a, b float64) {
	r, g, bl := c.LinearRgb()

	lm := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*bl)
	mm := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*bl)
	sm := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*bl)

	l = 0.2104542553*lm + 0.7936177850*mm - 0.0040720468*sm
	a = 1.9779984951*lm - 2.4285922050*mm + 0.4505937099*sm
	b = 0.0259040371*lm + 0.7827717662*mm - 0.8086757660*sm
	return l, a, b
}

// namedColors maps the CSS named colors the converter recognizes to their
// hex form. Words not in this map are left untouched by Convert.
var namedColors = map[string]string{
	"aqua":    "#00ffff",
	"black":   "#000000",
	"blue":    "#0000ff",
	"brown":   "#a52a2a",
	"coral":   "#ff7f50",
	"crimson": "#dc143c",
	"cyan":    "#00ffff",
	"fuchsia": "#ff00ff",
	"gold":    "#ffd700",
	"gray":    "#808080",
	"green":   "#008000",
	"grey":    "#808080",
	"indigo":  "#4b0082",
	"ivory":   "#fffff0",
	"khaki":   "#f0e68c",
	"lime":    "#00ff00",
	"magenta": "#ff00ff",
	"maroon":  "#800000",
	"navy":    "#000080",
	"olive":   "#808000",
	"orange":  "#ffa500",
	"orchid":  "#da70d6",
	"pink":    "#ffc0cb",
	"plum":    "#dda0dd",
	"purple":  "#800080",
	"red":     "#ff0000",
	"salmon":  "#fa8072",
	"sienna":  "#a0522d",
	"silver":  "#c0c0c0",
	"teal":    "#008080",
	"tomato":  "#ff6347",
	"violet":  "#ee82ee",
	"white":   "#ffffff",
	"yellow":  "#ffff00",
}
