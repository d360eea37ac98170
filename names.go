package pixel2svg

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// namedColor is an entry of the SVG 1.1 keyword color table.
type namedColor struct {
	name string
	rgb  color.NRGBA
}

// namedColors lists the keywords in alphabetical order.
// Aliases such as aqua/cyan share a value; the first one wins the lookup.
var namedColors = func() []namedColor {
	table := make([]namedColor, 0, len(colornames.Names))
	for _, name := range colornames.Names {
		c := colornames.Map[name]
		table = append(table, namedColor{
			name: name,
			rgb:  color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff},
		})
	}
	return table
}()

// NearestName returns the name of the keyword color closest to c.
// Distance is the sum of squared red, green and blue differences;
// ties resolve to the entry listed first.
func NearestName(c color.Color) string {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)

	best, score := 0, -1
	for i, e := range namedColors {
		if d := distanceRGB(nc, e.rgb); score < 0 || d < score {
			best, score = i, d
		}
	}
	return namedColors[best].name
}

// Hex formats the color as #rrggbb, the alpha channel is dropped.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts a keyword color name or a #rrggbb / #rgb hex value.
// The empty string and "none" return a fully transparent color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if hex == s || (len(hex) != 6 && len(hex) != 3) {
		return color.NRGBA{}, fmt.Errorf("%w: unknown color %q", ErrInvalidConfig, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: invalid color %q", ErrInvalidConfig, s)
	}

	var r, g, b uint8
	if len(hex) == 3 {
		r, g, b = uint8(v>>8&0xf)*0x11, uint8(v>>4&0xf)*0x11, uint8(v&0xf)*0x11
	} else {
		r, g, b = uint8(v>>16), uint8(v>>8), uint8(v)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
