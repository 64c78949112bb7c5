package session

import "github.com/textiq/textiq/internal/config"

// Theme selects the presentation color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Panel identifies which sidebar panel is open. The settings and
// history panels are mutually exclusive: opening one closes the other.
type Panel string

const (
	PanelNone     Panel = "none"
	PanelSettings Panel = "settings"
	PanelHistory  Panel = "history"
)

// Settings is the per-session adjustable configuration. It lives for
// one interactive session and is never persisted across sessions.
type Settings struct {
	SystemPrompt string
	Mode         string
	Temperature  float32
	Theme        Theme
	Panel        Panel
}

// DefaultSettings returns the documented session defaults: default
// system prompt, first named mode, temperature 0.7, light theme, no
// panel open.
func DefaultSettings() Settings {
	return Settings{
		SystemPrompt: config.DefaultSystemPrompt,
		Mode:         config.DefaultMode,
		Temperature:  config.DefaultTemperature,
		Theme:        ThemeLight,
		Panel:        PanelNone,
	}
}

// ToggleTheme flips between light and dark.
func (s *Settings) ToggleTheme() {
	if s.Theme == ThemeLight {
		s.Theme = ThemeDark
	} else {
		s.Theme = ThemeLight
	}
}

// ToggleSettings opens the settings panel, closing the history panel
// if it was open; toggling again closes it.
func (s *Settings) ToggleSettings() {
	if s.Panel == PanelSettings {
		s.Panel = PanelNone
	} else {
		s.Panel = PanelSettings
	}
}

// ToggleHistory opens the history panel, closing the settings panel if
// it was open; toggling again closes it.
func (s *Settings) ToggleHistory() {
	if s.Panel == PanelHistory {
		s.Panel = PanelNone
	} else {
		s.Panel = PanelHistory
	}
}

// SetTemperature clamps t into [0, 1.5] and stores it.
func (s *Settings) SetTemperature(t float32) {
	if t < 0 {
		t = 0
	}
	if t > config.MaxTemperature {
		t = config.MaxTemperature
	}
	s.Temperature = t
}
