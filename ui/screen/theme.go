package screen

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ScreeningTheme is the dark operator-console theme.
type ScreeningTheme struct{}

var _ fyne.Theme = (*ScreeningTheme)(nil)

func (t *ScreeningTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF} // belt orange
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0x60}
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0F, G: 0x17, B: 0x2A, A: 0xFF}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1E, G: 0x29, B: 0x3B, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *ScreeningTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ScreeningTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ScreeningTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 15
	case theme.SizeNameHeadingText:
		return 22
	default:
		return theme.DefaultTheme().Size(name)
	}
}
