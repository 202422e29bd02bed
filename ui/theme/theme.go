// Package theme activates the azure Tk theme and defines the semantic widget
// styles used by the views.
package theme

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ColorCanvas surrounds the displayed image. It stays dark in both modes so
// mask hues read the same.
const ColorCanvas = "#212121"

// PaletteSnapshot holds the resolved colors for one mode.
type PaletteSnapshot struct {
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string
	Canvas    string
}

var light = PaletteSnapshot{
	AppBg:     "#f7f9fb",
	Surface:   "#ffffff",
	Border:    "#d0d7de",
	Primary:   "#2563eb",
	Danger:    "#dc2626",
	Accent:    "#10b981",
	Text:      "#1e293b",
	TextMuted: "#64748b",
	Canvas:    ColorCanvas,
}

var dark = PaletteSnapshot{
	AppBg:     "#0f172a",
	Surface:   "#1e293b",
	Border:    "#334155",
	Primary:   "#3b82f6",
	Danger:    "#ef4444",
	Accent:    "#10b981",
	Text:      "#f1f5f9",
	TextMuted: "#94a3b8",
	Canvas:    ColorCanvas,
}

// Style names for Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStateLabel    = "state.TLabel"
	StyleMutedLabel    = "muted.TLabel"
)

var darkMode bool

// CurrentPalette returns the colors for the active mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
	return dark
	}
	return light
}

// SetDark selects the mode and reapplies all styles. Widgets created before
// the call keep explicit Background options until rebuilt.
func SetDark(d bool) bool {
	darkMode = d
	applyStyles()
	return darkMode
}

// ToggleDark flips the mode and returns the new value.
func ToggleDark() bool { return SetDark(!darkMode) }

func applyStyles() {
	pal := CurrentPalette()
	name := "azure light"
	stateFg := "white"
	if darkMode {
		name = "azure dark"
		stateFg = "#f0fdf4"
	}
	_ = ActivateTheme(name)
	App.Configure(Background(pal.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(pal.Primary), Foreground("white"),
		Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleDangerButton,
		Background(pal.Danger), Foreground("white"),
		Padding("4p 3p"), Borderwidth(1), Relief("ridge"))
	StyleConfigure(StyleAccentLabel,
		Foreground(pal.Primary), Background(pal.Surface),
		Padding("2p 1p"))
	// status label
	StyleConfigure(StyleStateLabel,
		Foreground(stateFg), Background(pal.Accent),
		Padding("4p 2p"), Borderwidth(1), Relief("groove"))
	StyleConfigure(StyleMutedLabel,
		Foreground(pal.TextMuted), Background(pal.Surface),
		Padding("2p 1p"))
}
