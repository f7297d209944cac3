package domain

// FontPreset names the typeface family used to display the current quote.
type FontPreset string

// Font presets.
const (
	FontSystem     FontPreset = "system"
	FontRounded    FontPreset = "rounded"
	FontMonospaced FontPreset = "monospaced"
	FontSerif      FontPreset = "serif"
)

// TextSizePreset is a point size.
type TextSizePreset int

// Text size presets.
const (
	TextSizeSmall   TextSizePreset = 12
	TextSizeRegular TextSizePreset = 13
	TextSizeLarge   TextSizePreset = 15
)

// ColorPreset names the text color used to display the current quote.
type ColorPreset string

// Color presets. ColorLabel follows the host's default label color.
const (
	ColorLabel  ColorPreset = "label"
	ColorRed    ColorPreset = "red"
	ColorOrange ColorPreset = "orange"
	ColorGreen  ColorPreset = "green"
	ColorBlue   ColorPreset = "blue"
	ColorPink   ColorPreset = "pink"
	ColorYellow ColorPreset = "yellow"
	ColorPurple ColorPreset = "purple"
	ColorIndigo ColorPreset = "indigo"
	ColorTeal   ColorPreset = "teal"
	ColorCyan   ColorPreset = "cyan"
	ColorBrown  ColorPreset = "brown"
	ColorGray   ColorPreset = "gray"
	ColorBlack  ColorPreset = "black"
)

// FontPresets lists every font preset in display order.
var FontPresets = []FontPreset{FontSystem, FontRounded, FontMonospaced, FontSerif}

// TextSizePresets lists every text size preset in display order.
var TextSizePresets = []TextSizePreset{TextSizeSmall, TextSizeRegular, TextSizeLarge}

// ColorPresets lists every color preset in display order.
var ColorPresets = []ColorPreset{
	ColorLabel, ColorRed, ColorOrange, ColorGreen, ColorBlue, ColorPink, ColorYellow,
	ColorPurple, ColorIndigo, ColorTeal, ColorCyan, ColorBrown, ColorGray, ColorBlack,
}

// DisplayStyle describes how presentation clients render the current quote.
// It is persisted alongside the rotation state but never affects rotation.
type DisplayStyle struct {
	Font     FontPreset
	TextSize TextSizePreset
	Color    ColorPreset
	Bold     bool
}

// DefaultDisplayStyle returns the style used when none is stored.
func DefaultDisplayStyle() DisplayStyle {
	return DisplayStyle{
		Font:     FontSystem,
		TextSize: TextSizeRegular,
		Color:    ColorLabel,
		Bold:     false,
	}
}

// Valid reports whether f is a known font preset.
func (f FontPreset) Valid() bool {
	for _, p := range FontPresets {
		if p == f {
			return true
		}
	}

	return false
}

// Valid reports whether s is a known text size preset.
func (s TextSizePreset) Valid() bool {
	for _, p := range TextSizePresets {
		if p == s {
			return true
		}
	}

	return false
}

// Valid reports whether c is a known color preset.
func (c ColorPreset) Valid() bool {
	for _, p := range ColorPresets {
		if p == c {
			return true
		}
	}

	return false
}

// Normalize replaces each unknown preset with its default, keeping the rest.
func (s DisplayStyle) Normalize() DisplayStyle {
	def := DefaultDisplayStyle()

	if !s.Font.Valid() {
		s.Font = def.Font
	}

	if !s.TextSize.Valid() {
		s.TextSize = def.TextSize
	}

	if !s.Color.Valid() {
		s.Color = def.Color
	}

	return s
}

// Validate rejects unknown presets. Used for user edits, where silently
// substituting a default would hide a typo.
func (s DisplayStyle) Validate() error {
	switch {
	case !s.Font.Valid():
		return NewValidationErrorWithValue("font", "unknown font preset", s.Font)
	case !s.TextSize.Valid():
		return NewValidationErrorWithValue("textSize", "unknown text size preset", s.TextSize)
	case !s.Color.Valid():
		return NewValidationErrorWithValue("color", "unknown color preset", s.Color)
	}

	return nil
}
