package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Colors - Midnight Commander style
var (
	ColorBg        = tcell.NewRGBColor(0, 0, 128)     // Dark blue background
	ColorFg        = tcell.NewRGBColor(192, 192, 192) // Light gray text
	ColorBorder    = tcell.NewRGBColor(0, 255, 255)   // Cyan borders
	ColorTitle     = tcell.NewRGBColor(255, 255, 255) // White titles
	ColorHighlight = tcell.NewRGBColor(0, 255, 255)   // Cyan highlight
	ColorOwn       = tcell.NewRGBColor(255, 255, 0)   // Yellow for own messages
	ColorOther     = tcell.NewRGBColor(0, 255, 255)   // Cyan for others' messages
	ColorPending   = tcell.NewRGBColor(255, 165, 0)   // Orange for pending state
	ColorButton    = tcell.NewRGBColor(0, 128, 128)   // Teal buttons
)

// colorTag renders a theme color as a tview dynamic-color tag value.
func colorTag(c tcell.Color) string {
	return fmt.Sprintf("#%06x", c.Hex())
}
