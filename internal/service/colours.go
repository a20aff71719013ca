package service

import (
	"regexp"
	"sort"
	"strings"
)

// Named society colours. Events may store either a name from this
// palette or a raw hex code; rendering always works in hex.
var colourPalette = map[string]string{
	"blue":        "#3A7DFF",
	"yellow":      "#FFC700",
	"grey":        "#202429",
	"greyer":      "#2F3338",
	"external":    "#989898",
	"president":   "#FDD835",
	"gaming":      "#3D53FF",
	"treasurer":   "#FD6035",
	"welfare":     "#4F33DB",
	"gaming2":     "#8135FD",
	"academic":    "#EE4F4F",
	"tech":        "#0EAD57",
	"secretary":   "#1DC9FF",
	"social":      "#B53DFF",
	"inclusivity": "#24D09D",
	"publicity":   "#EF8A2C",
	"events":      "#1DC9FF",
	"sports":      "#B53DFF",
	"compcafe":    "#358A4D",
	"milk":        "#4BB3FF",
}

var hexColour = regexp.MustCompile(`^#?[0-9a-f]{6}$`)

// ColourNames lists the palette names in alphabetical order.
func ColourNames() []string {
	names := make([]string, 0, len(colourPalette))
	for name := range colourPalette {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColourValid reports whether a colour is a palette name or a six-digit
// hex code.
func ColourValid(colour string) bool {
	c := strings.ToLower(strings.TrimSpace(colour))
	if _, ok := colourPalette[c]; ok {
		return true
	}
	return hexColour.MatchString(c)
}

// ColourHex resolves a stored colour to a hex code: palette names map
// through the palette, anything else is treated as a hex code and
// prefixed with '#' when the prefix is missing.
func ColourHex(colour string) string {
	c := strings.ToLower(strings.TrimSpace(colour))
	if hex, ok := colourPalette[c]; ok {
		return hex
	}
	if !strings.HasPrefix(c, "#") {
		return "#" + c
	}
	return c
}
