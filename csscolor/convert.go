package csscolor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"csskit/css"
)

// color is an sRGB color with alpha, channels in [0, 1].
type color struct {
	c colorful.Color
	a float64
}

var (
	hexPattern     = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{4}|[0-9a-fA-F]{3})\b`)
	colorFnPattern = regexp.MustCompile(`(?i)\b(rgba?|hsla?|hwb|oklab)\(([^()]*)\)`)
	wordPattern    = regexp.MustCompile(`(?i)\b[a-z]+\b`)
	opaquePattern  = regexp.MustCompile(`(?i)url\s*\([^)]*\)|"[^"]*"|'[^']*'`)
)

// Convert rewrites every recognizable color token in a CSS value into the
// target notation. Unrecognized tokens are left unchanged, so the result
// is always a valid value whenever the input was. url() references and
// quoted strings are opaque: color words inside them stay untouched.
func Convert(value string, target Notation) string {
	spans := opaquePattern.FindAllStringIndex(value, -1)
	if spans == nil {
		return convertSpan(value, target)
	}
	var b strings.Builder
	last := 0
	for _, loc := range spans {
		b.WriteString(convertSpan(value[last:loc[0]], target))
		b.WriteString(value[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(convertSpan(value[last:], target))
	return b.String()
}

func convertSpan(value string, target Notation) string {
	out := colorFnPattern.ReplaceAllStringFunc(value, func(match string) string {
		sub := colorFnPattern.FindStringSubmatch(match)
		col, ok := parseFunction(strings.ToLower(sub[1]), sub[2])
		if !ok {
			return match
		}
		return format(col, target)
	})
	out = hexPattern.ReplaceAllStringFunc(out, func(match string) string {
		col, ok := parseHex(match)
		if !ok {
			return match
		}
		return format(col, target)
	})
	out = wordPattern.ReplaceAllStringFunc(out, func(match string) string {
		hex, ok := namedColors[strings.ToLower(match)]
		if !ok {
			return match
		}
		col, _ := parseHex(hex)
		return format(col, target)
	})
	return out
}

// RewriteStylesheet converts color tokens in every declaration of the
// stylesheet, including at-rule descriptor blocks.
func RewriteStylesheet(s *css.Stylesheet, target Notation) {
	rewrite := func(decls []css.Declaration) {
		for i := range decls {
			decls[i].Value = Convert(decls[i].Value, target)
		}
	}
	for _, r := range s.Rules() {
		rewrite(r.Declarations)
	}
	for _, at := range s.AtRules() {
		rewrite(at.Declarations)
		for i := range at.Blocks {
			rewrite(at.Blocks[i].Declarations)
		}
	}
}

func parseHex(s string) (color, bool) {
	s = strings.ToLower(s)
	var hex string
	a := 1.0
	switch len(s) {
	case 4: // #rgb
		hex = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	case 5: // #rgba
		hex = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
		n, err := strconv.ParseUint(string([]byte{s[4], s[4]}), 16, 8)
		if err != nil {
			return color{}, false
		}
		a = float64(n) / 255
	case 7: // #rrggbb
		hex = s
	case 9: // #rrggbbaa
		hex = s[:7]
		n, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color{}, false
		}
		a = float64(n) / 255
	default:
		return color{}, false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color{}, false
	}
	return color{c: c, a: a}, true
}

// parseFunction parses the argument list of a color function. Both the
// legacy comma syntax and the modern space syntax with "/ alpha" are
// accepted.
func parseFunction(name, args string) (color, bool) {
	parts, alpha, ok := splitArgs(args)
	if !ok || len(parts) != 3 {
		return color{}, false
	}
	switch name {
	case "rgb", "rgba":
		r, ok1 := channelByte(parts[0])
		g, ok2 := channelByte(parts[1])
		b, ok3 := channelByte(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return color{}, false
		}
		return color{c: colorful.Color{R: r, G: g, B: b}, a: alpha}, true
	case "hsl", "hsla":
		h, ok1 := angle(parts[0])
		s, ok2 := percent(parts[1])
		l, ok3 := percent(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return color{}, false
		}
		return color{c: colorful.Hsl(h, s, l), a: alpha}, true
	case "hwb":
		h, ok1 := angle(parts[0])
		w, ok2 := percent(parts[1])
		b, ok3 := percent(parts[2])
		if !ok1 || !ok2 || !ok3 {
			return color{}, false
		}
		return color{c: hwbToColor(h, w, b), a: alpha}, true
	case "oklab":
		l, ok1 := number(parts[0], 1)
		a, ok2 := number(parts[1], 0.4)
		b, ok3 := number(parts[2], 0.4)
		if !ok1 || !ok2 || !ok3 {
			return color{}, false
		}
		return color{c: okLabToColor(l, a, b), a: alpha}, true
	}
	return color{}, false
}

// splitArgs splits a color function argument list into three component
// strings plus an alpha, handling "a, b, c[, alpha]" and "a b c [/ alpha]".
func splitArgs(args string) ([]string, float64, bool) {
	alpha := 1.0
	if i := strings.IndexByte(args, '/'); i >= 0 {
		a, ok := alphaValue(strings.TrimSpace(args[i+1:]))
		if !ok {
			return nil, 0, false
		}
		alpha = a
		args = args[:i]
	}
	var parts []string
	if strings.Contains(args, ",") {
		for _, p := range strings.Split(args, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
		if len(parts) == 4 {
			a, ok := alphaValue(parts[3])
			if !ok {
				return nil, 0, false
			}
			alpha = a
			parts = parts[:3]
		}
	} else {
		parts = strings.Fields(args)
	}
	return parts, alpha, true
}

func alphaValue(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 100), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v), true
}

// channelByte parses an rgb() channel: 0-255 or a percentage.
func channelByte(s string) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp01(v / 100), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v / 255), true
}

func angle(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "deg")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return math.Mod(math.Mod(v, 360)+360, 360), true
}

func percent(s string) (float64, bool) {
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v / 100), true
}

// number parses a plain number or a percentage scaled to the given range.
func number(s string, scale float64) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return v / 100 * scale, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func format(col color, target Notation) string {
	switch target {
	case Hex:
		out := col.c.Clamped().Hex()
		if col.a < 1 {
			out += fmt.Sprintf("%02x", int(math.Round(col.a*255)))
		}
		return out
	case RGB:
		c := col.c.Clamped()
		r := int(math.Round(c.R * 255))
		g := int(math.Round(c.G * 255))
		b := int(math.Round(c.B * 255))
		if col.a < 1 {
			return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(col.a))
		}
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	case HSL:
		h, s, l := col.c.Clamped().Hsl()
		hh := int(math.Round(h)) % 360
		ss := int(math.Round(s * 100))
		ll := int(math.Round(l * 100))
		if col.a < 1 {
			return fmt.Sprintf("hsla(%d, %d%%, %d%%, %s)", hh, ss, ll, formatAlpha(col.a))
		}
		return fmt.Sprintf("hsl(%d, %d%%, %d%%)", hh, ss, ll)
	case HWB:
		h, w, b := colorToHWB(col.c.Clamped())
		out := fmt.Sprintf("hwb(%d %d%% %d%%)", int(math.Round(h))%360, int(math.Round(w*100)), int(math.Round(b*100)))
		if col.a < 1 {
			out = strings.TrimSuffix(out, ")") + " / " + formatAlpha(col.a) + ")"
		}
		return out
	case OkLab:
		l, a, b := colorToOkLab(col.c)
		out := fmt.Sprintf("oklab(%s %s %s)", formatOk(l), formatOk(a), formatOk(b))
		if col.a < 1 {
			out = strings.TrimSuffix(out, ")") + " / " + formatAlpha(col.a) + ")"
		}
		return out
	}
	return col.c.Hex()
}

// formatAlpha renders alpha with at most three decimals.
func formatAlpha(a float64) string {
	s := strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64)
	return s
}

// formatOk renders an oklab component with at most four decimals.
func formatOk(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64)
}
