package menu

import (
	"github.com/Carmen-Shannon/tm3d-go/engine/log"
)

// MenuBuilderOption is a functional option for configuring a Menu.
type MenuBuilderOption func(*menu)

// WithFonts sets where Draw loads its fonts from.
//
// Parameters:
//   - fonts: the font source, typically a *font.Library
//
// Returns:
//   - MenuBuilderOption: option function to apply
func WithFonts(fonts FontSource) MenuBuilderOption {
	return func(m *menu) {
		m.fonts = fonts
	}
}

// WithTitle replaces DefaultTitle.
func WithTitle(title string) MenuBuilderOption {
	return func(m *menu) {
		m.title = title
	}
}

// WithMode sets the starting program mode.
func WithMode(mode Mode) MenuBuilderOption {
	return func(m *menu) {
		m.mode = mode
	}
}

func WithLogger(l *log.Logger) MenuBuilderOption {
	return func(m *menu) {
		m.log = l
	}
}
