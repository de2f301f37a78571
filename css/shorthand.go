package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// maxValueLength guards shorthand splitting against pathologically large
// values; longer values are rejected with ErrValueTooLong.
const maxValueLength = 4096

var sides = [4]string{"top", "right", "bottom", "left"}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true,
	"solid": true, "double": true, "groove": true, "ridge": true,
	"inset": true, "outset": true,
}

var borderWidthKeywords = map[string]bool{"thin": true, "medium": true, "thick": true}

var repeatKeywords = map[string]bool{
	"repeat": true, "repeat-x": true, "repeat-y": true,
	"no-repeat": true, "space": true, "round": true,
}

var attachmentKeywords = map[string]bool{"scroll": true, "fixed": true, "local": true}

var positionKeywords = map[string]bool{
	"left": true, "right": true, "top": true, "bottom": true, "center": true,
}

var fontStyleKeywords = map[string]bool{"italic": true, "oblique": true}

var fontWeightKeywords = map[string]bool{
	"bold": true, "bolder": true, "lighter": true,
	"100": true, "200": true, "300": true, "400": true, "500": true,
	"600": true, "700": true, "800": true, "900": true,
}

var fontSizeKeywords = map[string]bool{
	"xx-small": true, "x-small": true, "small": true, "medium": true,
	"large": true, "x-large": true, "xx-large": true,
	"smaller": true, "larger": true,
}

var listStylePositions = map[string]bool{"inside": true, "outside": true}

var colorFunctions = map[string]bool{
	"rgb": true, "rgba": true, "hsl": true, "hsla": true,
	"hwb": true, "lab": true, "lch": true, "oklab": true, "oklch": true,
	"color": true,
}

// namedColors covers the CSS basic keywords plus the extended names that
// show up in real-world stylesheets. Classification falls back to position
// for unknown idents, so this list does not need to be exhaustive.
var namedColors = map[string]bool{
	"transparent": true, "currentcolor": true,
	"black": true, "silver": true, "gray": true, "grey": true, "white": true,
	"maroon": true, "red": true, "purple": true, "fuchsia": true,
	"green": true, "lime": true, "olive": true, "yellow": true,
	"navy": true, "blue": true, "teal": true, "aqua": true,
	"orange": true, "brown": true, "pink": true, "gold": true,
	"indigo": true, "violet": true, "coral": true, "salmon": true,
	"khaki": true, "crimson": true, "plum": true, "orchid": true,
	"turquoise": true, "tan": true, "beige": true, "ivory": true,
	"lavender": true, "magenta": true, "cyan": true, "azure": true,
	"snow": true, "linen": true, "wheat": true, "tomato": true,
	"chocolate": true, "firebrick": true, "gainsboro": true,
	"whitesmoke": true, "lightgray": true, "lightgrey": true,
	"darkgray": true, "darkgrey": true, "dimgray": true, "dimgrey": true,
	"darkred": true, "darkblue": true, "darkgreen": true, "darkorange": true,
	"lightblue": true, "lightgreen": true, "lightyellow": true,
	"rebeccapurple": true, "slategray": true, "steelblue": true,
	"royalblue": true, "skyblue": true, "seagreen": true, "forestgreen": true,
	"goldenrod": true, "hotpink": true, "deeppink": true, "aliceblue": true,
}

// splitValue splits a value string on top-level whitespace. Whitespace
// inside functions, parens or brackets does not split, so a
// "calc(100% - 20px)" stays one chunk.
func splitValue(value string) []string {
	toks := tokenize(value)
	var chunks []string
	var b strings.Builder
	depth := 0
	flush := func() {
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}
	for _, t := range toks {
		switch {
		case opensGroup(t.tt):
			depth++
		case closesGroup(t.tt):
			if depth > 0 {
				depth--
			}
		case t.isWS() && depth == 0:
			flush()
			continue
		}
		b.WriteString(t.text)
	}
	flush()
	return chunks
}

// chunkKind classifies one value chunk for shorthand expansion.
func isLengthChunk(chunk string) bool {
	toks := tokenize(chunk)
	if len(toks) != 1 {
		// calc() and friends count as lengths
		return len(toks) > 0 && toks[0].tt == css.FunctionToken &&
			strings.EqualFold(toks[0].text, "calc(")
	}
	switch toks[0].tt {
	case css.NumberToken, css.DimensionToken, css.PercentageToken:
		return true
	}
	return false
}

func isColorChunk(chunk string) bool {
	toks := tokenize(chunk)
	if len(toks) == 0 {
		return false
	}
	switch toks[0].tt {
	case css.HashToken:
		return true
	case css.FunctionToken:
		return colorFunctions[strings.ToLower(strings.TrimSuffix(toks[0].text, "("))]
	case css.IdentToken:
		return len(toks) == 1 && namedColors[strings.ToLower(chunk)]
	}
	return false
}

func isImageChunk(chunk string) bool {
	toks := tokenize(chunk)
	if len(toks) == 0 {
		return false
	}
	switch toks[0].tt {
	case css.URLToken:
		return true
	case css.FunctionToken:
		name := strings.ToLower(strings.TrimSuffix(toks[0].text, "("))
		return name == "url" || strings.Contains(name, "gradient") || name == "image-set"
	}
	return false
}

func isPositionChunk(chunk string) bool {
	return positionKeywords[strings.ToLower(chunk)] || isLengthChunk(chunk)
}

// IsShorthand reports whether the property is a shorthand this engine can
// expand.
func IsShorthand(property string) bool {
	switch strings.ToLower(property) {
	case "margin", "padding", "border", "border-width", "border-style", "border-color",
		"border-top", "border-right", "border-bottom", "border-left",
		"background", "font", "list-style":
		return true
	}
	return false
}

// ExpandShorthand expands a shorthand declaration into its longhand
// declarations, each inheriting the Important flag. It returns (nil, nil)
// for properties that are not shorthands and for shorthand values it cannot
// make sense of, and ErrValueTooLong when the value exceeds the input-size
// guard.
func ExpandShorthand(d Declaration) ([]Declaration, error) {
	if len(d.Value) > maxValueLength {
		return nil, ErrValueTooLong
	}
	prop := strings.ToLower(d.Property)
	switch prop {
	case "margin", "padding":
		return expandDimensions(d, func(side string) string { return prop + "-" + side })
	case "border-width", "border-style", "border-color":
		kind := strings.TrimPrefix(prop, "border-")
		return expandDimensions(d, func(side string) string { return "border-" + side + "-" + kind })
	case "border":
		return expandBorder(d, sides[:])
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorder(d, []string{strings.TrimPrefix(prop, "border-")})
	case "background":
		return expandBackground(d)
	case "font":
		return expandFont(d)
	case "list-style":
		return expandListStyle(d)
	}
	return nil, nil
}

// expandOrSelf expands a shorthand or returns the declaration unchanged.
// Oversized and unparseable values stay as-is.
func expandOrSelf(d Declaration) []Declaration {
	out, err := ExpandShorthand(d)
	if err != nil || out == nil {
		return []Declaration{d}
	}
	return out
}

// expandDimensions applies the 1/2/3/4-value CSS rule: one value for all
// sides; two for top/bottom and left/right; three for top, left/right,
// bottom; four for top, right, bottom, left.
func expandDimensions(d Declaration, name func(side string) string) ([]Declaration, error) {
	chunks := splitValue(d.Value)
	var t, r, b, l string
	switch len(chunks) {
	case 1:
		t, r, b, l = chunks[0], chunks[0], chunks[0], chunks[0]
	case 2:
		t, r, b, l = chunks[0], chunks[1], chunks[0], chunks[1]
	case 3:
		t, r, b, l = chunks[0], chunks[1], chunks[2], chunks[1]
	case 4:
		t, r, b, l = chunks[0], chunks[1], chunks[2], chunks[3]
	default:
		return nil, nil
	}
	return []Declaration{
		{Property: name("top"), Value: t, Important: d.Important},
		{Property: name("right"), Value: r, Important: d.Important},
		{Property: name("bottom"), Value: b, Important: d.Important},
		{Property: name("left"), Value: l, Important: d.Important},
	}, nil
}

// expandBorder expands "border" and "border-<side>": up to three components
// (width, style, color) applied to each of the given sides.
func expandBorder(d Declaration, toSides []string) ([]Declaration, error) {
	chunks := splitValue(d.Value)
	if len(chunks) == 0 || len(chunks) > 3 {
		return nil, nil
	}
	var width, style, color string
	for _, c := range chunks {
		lc := strings.ToLower(c)
		switch {
		case style == "" && borderStyles[lc]:
			style = c
		case width == "" && (borderWidthKeywords[lc] || isLengthChunk(c)):
			width = c
		case color == "":
			color = c
		default:
			return nil, nil
		}
	}
	var out []Declaration
	emit := func(kind, value string) {
		if value == "" {
			return
		}
		for _, side := range toSides {
			out = append(out, Declaration{
				Property:  "border-" + side + "-" + kind,
				Value:     value,
				Important: d.Important,
			})
		}
	}
	emit("width", width)
	emit("style", style)
	emit("color", color)
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// expandBackground expands "background" by token shape: url()/gradients are
// the image, repeat keywords the repeat, attachment keywords the
// attachment, a recognizable color the color, and remaining position-shaped
// chunks the position, with chunks after "/" forming the size. Components
// missing from the value get their CSS initial value so a later shorthand
// resets earlier longhands during cascade.
func expandBackground(d Declaration) ([]Declaration, error) {
	color, image, repeat, attachment := "transparent", "none", "repeat", "scroll"
	var position, size []string
	afterSlash := false

	var chunks []string
	for _, c := range splitValue(d.Value) {
		// "center/cover" carries the separator inside one chunk
		if i := strings.IndexByte(c, '/'); i >= 0 && !isImageChunk(c) && !isColorChunk(c) && !strings.Contains(c, "(") {
			if i > 0 {
				chunks = append(chunks, c[:i])
			}
			chunks = append(chunks, "/")
			if i+1 < len(c) {
				chunks = append(chunks, c[i+1:])
			}
			continue
		}
		chunks = append(chunks, c)
	}

	for _, c := range chunks {
		lc := strings.ToLower(c)
		switch {
		case c == "/":
			afterSlash = true
		case afterSlash:
			size = append(size, c)
		case isImageChunk(c):
			image = c
		case repeatKeywords[lc]:
			repeat = c
		case attachmentKeywords[lc]:
			attachment = c
		case isColorChunk(c):
			color = c
		case isPositionChunk(c):
			position = append(position, c)
		default:
			// unknown token shape: leave the shorthand alone
			return nil, nil
		}
	}

	out := []Declaration{
		{Property: "background-color", Value: color, Important: d.Important},
		{Property: "background-image", Value: image, Important: d.Important},
		{Property: "background-repeat", Value: repeat, Important: d.Important},
		{Property: "background-attachment", Value: attachment, Important: d.Important},
	}
	pos := "0% 0%"
	if len(position) > 0 {
		pos = strings.Join(position, " ")
	}
	out = append(out, Declaration{Property: "background-position", Value: pos, Important: d.Important})
	if len(size) > 0 {
		out = append(out, Declaration{Property: "background-size", Value: strings.Join(size, " "), Important: d.Important})
	}
	return out, nil
}

// expandFont expands "font": optional leading style/variant/weight chunks,
// the mandatory size[/line-height] chunk, and the remainder as the family
// list. The family is everything after the size chunk and is never split on
// commas or quotes.
func expandFont(d Declaration) ([]Declaration, error) {
	chunks := splitValue(d.Value)
	style, variant, weight, lineHeight := "normal", "normal", "normal", "normal"
	size := ""
	sizeIdx := -1

	for i, c := range chunks {
		lc := strings.ToLower(c)
		sz := c
		if j := strings.IndexByte(c, '/'); j > 0 && !strings.Contains(c[:j], "(") {
			sz = c[:j]
		}
		if isLengthChunk(sz) || fontSizeKeywords[strings.ToLower(sz)] {
			// the first length-shaped chunk that is not a weight is the size
			if fontWeightKeywords[lc] && weight == "normal" && sizeIdx < 0 && i < len(chunks)-1 {
				weight = c
				continue
			}
			size = sz
			if j := strings.IndexByte(c, '/'); j > 0 && j+1 < len(c) {
				lineHeight = c[j+1:]
			}
			sizeIdx = i
			break
		}
		switch {
		case fontStyleKeywords[lc]:
			style = c
		case lc == "small-caps":
			variant = c
		case fontWeightKeywords[lc]:
			weight = c
		case lc == "normal":
			// explicit initial for style/variant/weight; nothing to record
		default:
			return nil, nil
		}
	}
	if sizeIdx < 0 || sizeIdx == len(chunks)-1 {
		// no size or no family: not a well-formed font shorthand
		return nil, nil
	}
	family := strings.Join(chunks[sizeIdx+1:], " ")

	return []Declaration{
		{Property: "font-style", Value: style, Important: d.Important},
		{Property: "font-variant", Value: variant, Important: d.Important},
		{Property: "font-weight", Value: weight, Important: d.Important},
		{Property: "font-size", Value: size, Important: d.Important},
		{Property: "line-height", Value: lineHeight, Important: d.Important},
		{Property: "font-family", Value: family, Important: d.Important},
	}, nil
}

// expandListStyle expands "list-style" into type/position/image.
func expandListStyle(d Declaration) ([]Declaration, error) {
	typ, pos, img := "disc", "outside", "none"
	for _, c := range splitValue(d.Value) {
		lc := strings.ToLower(c)
		switch {
		case isImageChunk(c):
			img = c
		case listStylePositions[lc]:
			pos = c
		default:
			typ = c
		}
	}
	return []Declaration{
		{Property: "list-style-type", Value: typ, Important: d.Important},
		{Property: "list-style-position", Value: pos, Important: d.Important},
		{Property: "list-style-image", Value: img, Important: d.Important},
	}, nil
}

// declList is an ordered property set used by the collapser: first-seen
// property order with later same-property values overriding in place.
type declList struct {
	order []string
	m     map[string]Declaration
}

func newDeclList(decls []Declaration) *declList {
	l := &declList{m: make(map[string]Declaration, len(decls))}
	for _, d := range decls {
		l.set(d)
	}
	return l
}

func (l *declList) set(d Declaration) {
	if _, ok := l.m[d.Property]; !ok {
		l.order = append(l.order, d.Property)
	}
	l.m[d.Property] = d
}

func (l *declList) get(prop string) (Declaration, bool) {
	d, ok := l.m[prop]
	return d, ok
}

// replace removes the given properties and inserts the replacement at the
// position of the first removed property.
func (l *declList) replace(props []string, repl Declaration) {
	at := -1
	remove := make(map[string]bool, len(props))
	for _, p := range props {
		remove[p] = true
	}
	order := l.order[:0]
	for _, p := range l.order {
		if remove[p] {
			if at < 0 {
				at = len(order)
				order = append(order, repl.Property)
			}
			delete(l.m, p)
			continue
		}
		order = append(order, p)
	}
	l.order = order
	l.m[repl.Property] = repl
}

func (l *declList) decls() []Declaration {
	out := make([]Declaration, 0, len(l.order))
	for _, p := range l.order {
		out = append(out, l.m[p])
	}
	return out
}

// all returns the declarations for props when every one is present with the
// same importance.
func (l *declList) all(props ...string) ([]Declaration, bool) {
	out := make([]Declaration, 0, len(props))
	for i, p := range props {
		d, ok := l.m[p]
		if !ok || (i > 0 && d.Important != out[0].Important) {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}

// collapseDimensions renders four side values in minimal 1/2/3/4 form.
func collapseDimensions(t, r, b, l string) string {
	switch {
	case t == r && r == b && b == l:
		return t
	case t == b && r == l:
		return t + " " + r
	case r == l:
		return t + " " + r + " " + b
	default:
		return t + " " + r + " " + b + " " + l
	}
}

// CollapseShorthands re-combines complete, compatible longhand sets into
// their shorthand form: four-sided dimension properties, border,
// background, font and list-style. Partial sets are left as longhands.
// Components only collapse when they agree on importance.
func CollapseShorthands(decls []Declaration) []Declaration {
	l := newDeclList(decls)

	collapseSides := func(shorthand string, name func(side string) string) {
		props := []string{name("top"), name("right"), name("bottom"), name("left")}
		ds, ok := l.all(props...)
		if !ok {
			return
		}
		l.replace(props, Declaration{
			Property:  shorthand,
			Value:     collapseDimensions(ds[0].Value, ds[1].Value, ds[2].Value, ds[3].Value),
			Important: ds[0].Important,
		})
	}

	collapseSides("margin", func(s string) string { return "margin-" + s })
	collapseSides("padding", func(s string) string { return "padding-" + s })
	for _, kind := range []string{"width", "style", "color"} {
		collapseSides("border-"+kind, func(s string) string { return "border-" + s + "-" + kind })
	}

	// border-width/style/color collapse further into "border" when each is a
	// single uniform value
	if ds, ok := l.all("border-width", "border-style", "border-color"); ok {
		single := true
		for _, d := range ds {
			if len(splitValue(d.Value)) != 1 {
				single = false
				break
			}
		}
		if single {
			l.replace([]string{"border-width", "border-style", "border-color"}, Declaration{
				Property:  "border",
				Value:     ds[0].Value + " " + ds[1].Value + " " + ds[2].Value,
				Important: ds[0].Important,
			})
		}
	}

	if ds, ok := l.all("background-color", "background-image", "background-repeat",
		"background-attachment", "background-position"); ok {
		var parts []string
		appendNonDefault := func(v, def string) {
			if !strings.EqualFold(v, def) {
				parts = append(parts, v)
			}
		}
		appendNonDefault(ds[0].Value, "transparent")
		appendNonDefault(ds[1].Value, "none")
		appendNonDefault(ds[2].Value, "repeat")
		appendNonDefault(ds[3].Value, "scroll")
		pos := ds[4].Value
		props := []string{"background-color", "background-image", "background-repeat",
			"background-attachment", "background-position"}
		if sz, ok := l.get("background-size"); ok && sz.Important == ds[0].Important {
			parts = append(parts, pos+" / "+sz.Value)
			props = append(props, "background-size")
		} else if pos != "0% 0%" {
			parts = append(parts, pos)
		}
		value := strings.Join(parts, " ")
		if value == "" {
			value = "none"
		}
		l.replace(props, Declaration{Property: "background", Value: value, Important: ds[0].Important})
	}

	if ds, ok := l.all("font-size", "font-family"); ok {
		parts := make([]string, 0, 6)
		props := make([]string, 0, 6)
		optional := func(prop, def string) bool {
			d, present := l.get(prop)
			if !present {
				return true
			}
			if d.Important != ds[0].Important {
				return false
			}
			props = append(props, prop)
			if !strings.EqualFold(d.Value, def) {
				parts = append(parts, d.Value)
			}
			return true
		}
		if optional("font-style", "normal") && optional("font-variant", "normal") && optional("font-weight", "normal") {
			size := ds[0].Value
			if lh, present := l.get("line-height"); present && lh.Important == ds[0].Important {
				if !strings.EqualFold(lh.Value, "normal") {
					size += "/" + lh.Value
				}
				props = append(props, "line-height")
			}
			parts = append(parts, size, ds[1].Value)
			props = append(props, "font-size", "font-family")
			l.replace(props, Declaration{
				Property:  "font",
				Value:     strings.Join(parts, " "),
				Important: ds[0].Important,
			})
		}
	}

	if ds, ok := l.all("list-style-type", "list-style-position", "list-style-image"); ok {
		var parts []string
		appendNonDefault := func(v, def string) {
			if !strings.EqualFold(v, def) {
				parts = append(parts, v)
			}
		}
		appendNonDefault(ds[0].Value, "disc")
		appendNonDefault(ds[1].Value, "outside")
		appendNonDefault(ds[2].Value, "none")
		value := strings.Join(parts, " ")
		if value == "" {
			value = "disc"
		}
		l.replace([]string{"list-style-type", "list-style-position", "list-style-image"},
			Declaration{Property: "list-style", Value: value, Important: ds[0].Important})
	}

	return l.decls()
}
