//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package query

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
)

const (
	foregroundRequest = "\x1b]10;?\x07"
	backgroundRequest = "\x1b]11;?\x07"
	colorTerminator   = "\x07"
)

var colorRegexp = regexp.MustCompile("rgb:([0-9a-fA-F]+)/([0-9a-fA-F]+)/([0-9a-fA-F]+)\x07$")

// Color is an RGB triple in the range the terminal reports, usually
// 0-65535 per channel.
type Color struct {
	R int
	G int
	B int
}

// NoColor is returned when the color is unknown
var NoColor = Color{-1, -1, -1}

// Valid tells whether c holds a reported color
func (c Color) Valid() bool {
	return c != NoColor
}

func (c Color) String() string {
	return fmt.Sprintf("rgb:%04x/%04x/%04x", c.R, c.G, c.B)
}

// Luminance returns the perceived brightness of c using the HSP color
// model, in the same range as the channels.
func Luminance(c Color) float64 {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	return math.Sqrt(0.299*r*r + 0.587*g*g + 0.114*b*b)
}

// ParseColor extracts an OSC color report (rgb:RRRR/GGGG/BBBB BEL) from
// the end of reply.
func ParseColor(reply []byte) (Color, bool) {
	m := colorRegexp.FindSubmatch(reply)
	if m == nil {
		return NoColor, false
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseInt(string(m[i+1]), 16, 32)
		if err != nil {
			return NoColor, false
		}
		rgb[i] = int(v)
	}
	return Color{rgb[0], rgb[1], rgb[2]}, true
}

// ReadColor reads an OSC color report from r. It returns NoColor if r does
// not yield one.
func ReadColor(r io.Reader) Color {
	c, _ := ParseColor(ReadUntil(r, []byte(colorTerminator)))
	return c
}

// Theme classifies a color scheme.
type Theme int

const (
	// ThemeUnknown means at least one of the colors could not be read
	ThemeUnknown Theme = iota
	// ThemeLight means the background is brighter than the foreground
	ThemeLight
	// ThemeDark means the background is not brighter than the foreground
	ThemeDark
)

func (t Theme) String() string {
	switch t {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	}
	return "unknown"
}

// ThemeOf classifies the foreground/background pair
func ThemeOf(fg, bg Color) Theme {
	if !fg.Valid() || !bg.Valid() {
		return ThemeUnknown
	}
	if Luminance(bg) > Luminance(fg) {
		return ThemeLight
	}
	return ThemeDark
}

// IsLight reports whether t is a light theme. known is false for
// ThemeUnknown, and light must then be ignored.
func (t Theme) IsLight() (light bool, known bool) {
	return t == ThemeLight, t != ThemeUnknown
}

// IsDark reports whether t is a dark theme. known is false for
// ThemeUnknown, and dark must then be ignored.
func (t Theme) IsDark() (dark bool, known bool) {
	return t == ThemeDark, t != ThemeUnknown
}

// Colors returns the color count of the configured terminal type
func (c *Client) Colors() int {
	return Colors(c.config.Term)
}

// SupportsColorQuery tells whether the terminal type is likely to answer
// OSC 10/11 queries.
func (c *Client) SupportsColorQuery() bool {
	return IsXterm(c.config.Term) || c.Colors() >= 256
}

func (c *Client) color(request string) (Color, error) {
	if !c.SupportsColorQuery() {
		return NoColor, nil
	}
	return Query(c, request, colorTerminator, ParseColor, NoColor)
}

// ForegroundColor returns the default text color, or NoColor
func (c *Client) ForegroundColor() (Color, error) {
	return c.color(foregroundRequest)
}

// BackgroundColor returns the default background color, or NoColor
func (c *Client) BackgroundColor() (Color, error) {
	return c.color(backgroundRequest)
}

// Theme compares the luminance of the background and foreground colors.
func (c *Client) Theme() (Theme, error) {
	fg, err := c.ForegroundColor()
	if err != nil || !fg.Valid() {
		return ThemeUnknown, err
	}
	bg, err := c.BackgroundColor()
	if err != nil {
		return ThemeUnknown, err
	}
	return ThemeOf(fg, bg), nil
}

// IsLightMode reports whether the terminal has a light background. known
// is false when either color could not be read.
func (c *Client) IsLightMode() (light bool, known bool, err error) {
	theme, err := c.Theme()
	light, known = theme.IsLight()
	return light, known, err
}

// IsDarkMode reports whether the terminal has a dark background. known is
// false when either color could not be read.
func (c *Client) IsDarkMode() (dark bool, known bool, err error) {
	theme, err := c.Theme()
	dark, known = theme.IsDark()
	return dark, known, err
}

// ForegroundColor is Client.ForegroundColor with the default configuration
func ForegroundColor() (Color, error) {
	return New(DefaultConfig()).ForegroundColor()
}

// BackgroundColor is Client.BackgroundColor with the default configuration
func BackgroundColor() (Color, error) {
	return New(DefaultConfig()).BackgroundColor()
}

// CurrentTheme is Client.Theme with the default configuration
func CurrentTheme() (Theme, error) {
	return New(DefaultConfig()).Theme()
}

// IsLightMode is Client.IsLightMode with the default configuration
func IsLightMode() (bool, bool, error) {
	return New(DefaultConfig()).IsLightMode()
}

// IsDarkMode is Client.IsDarkMode with the default configuration
func IsDarkMode() (bool, bool, error) {
	return New(DefaultConfig()).IsDarkMode()
}
