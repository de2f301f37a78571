// Package csscolor converts color tokens inside CSS values between
// notations: hex, rgb(), hsl(), hwb() and oklab().
package csscolor

import "fmt"

// Notation identifies a color serialization form.
type Notation int

const (
	Hex Notation = iota
	RGB
	HSL
	HWB
	OkLab
)

func (n Notation) String() string {
	switch n {
	case Hex:
		return "hex"
	case RGB:
		return "rgb"
	case HSL:
		return "hsl"
	case HWB:
		return "hwb"
	case OkLab:
		return "oklab"
	default:
		return fmt.Sprintf("notation(%d)", int(n))
	}
}

// ParseNotation maps a user-facing name to a Notation.
func ParseNotation(name string) (Notation, error) {
	switch name {
	case "hex":
		return Hex, nil
	case "rgb", "rgba":
		return RGB, nil
	case "hsl", "hsla":
		return HSL, nil
	case "hwb":
		return HWB, nil
	case "oklab":
		return OkLab, nil
	default:
		return Hex, fmt.Errorf("unknown color notation %q", name)
	}
}
