package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/utils"
)

const preferencesFile = "user-preferences.json"

// preferencesData is the on-disk shape.
type preferencesData struct {
	UseAmericanDateFormat bool     `json:"useAmericanDateFormat"`
	DarkMode              bool     `json:"darkMode"`
	FontSize              int      `json:"fontSize"`
	SelectedPlatforms     []string `json:"selectedPlatforms"`
}

// Preferences holds user-tunable client settings, persisted as JSON in the
// app data directory. Every setter saves immediately.
type Preferences struct {
	mu   sync.Mutex
	path string
	data preferencesData
}

// LoadPreferences reads preferences from dir, falling back to defaults when
// the file is absent or unreadable.
func LoadPreferences(dir string) *Preferences {
	p := &Preferences{
		path: filepath.Join(dir, preferencesFile),
		data: preferencesData{
			DarkMode:          true,
			FontSize:          14,
			SelectedPlatforms: append([]string(nil), models.ValidPlatforms...),
		},
	}

	b, err := os.ReadFile(p.path)
	if err != nil {
		utils.Sugar.Info("no preferences file found, using defaults")
		return p
	}
	var data preferencesData
	if err := json.Unmarshal(b, &data); err != nil {
		utils.Sugar.Errorf("failed to parse preferences, using defaults: %v", err)
		return p
	}
	if len(data.SelectedPlatforms) == 0 {
		data.SelectedPlatforms = append([]string(nil), models.ValidPlatforms...)
	}
	p.data = data
	return p
}

// UseAmericanDateFormat reports the configured date style.
func (p *Preferences) UseAmericanDateFormat() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.UseAmericanDateFormat
}

// SetUseAmericanDateFormat switches between MM/DD/YYYY and DD/MM/YYYY display.
func (p *Preferences) SetUseAmericanDateFormat(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.UseAmericanDateFormat = v
	p.saveLocked()
}

// DarkMode reports whether the dark theme is enabled.
func (p *Preferences) DarkMode() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.DarkMode
}

// SetDarkMode toggles the theme.
func (p *Preferences) SetDarkMode(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.DarkMode = v
	p.saveLocked()
}

// FontSize returns the configured UI font size.
func (p *Preferences) FontSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.FontSize
}

// SetFontSize updates the UI font size.
func (p *Preferences) SetFontSize(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.FontSize = v
	p.saveLocked()
}

// SelectedPlatforms returns the platforms shown in the calendar filter.
func (p *Preferences) SelectedPlatforms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.data.SelectedPlatforms...)
}

// SelectPlatform adds a platform to the filter.
func (p *Preferences) SelectPlatform(platform string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.data.SelectedPlatforms {
		if s == platform {
			return
		}
	}
	p.data.SelectedPlatforms = append(p.data.SelectedPlatforms, platform)
	p.saveLocked()
}

// DeselectPlatform removes a platform from the filter. At least one platform
// always stays selected.
func (p *Preferences) DeselectPlatform(platform string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.data.SelectedPlatforms) <= 1 {
		utils.Sugar.Warn("cannot deselect last platform, at least one must remain selected")
		return false
	}
	for i, s := range p.data.SelectedPlatforms {
		if s == platform {
			p.data.SelectedPlatforms = append(p.data.SelectedPlatforms[:i], p.data.SelectedPlatforms[i+1:]...)
			p.saveLocked()
			return true
		}
	}
	return false
}

// FormatDate renders a date in the configured style.
func (p *Preferences) FormatDate(t time.Time) string {
	if p.UseAmericanDateFormat() {
		return t.Format("01/02/2006")
	}
	return t.Format("02/01/2006")
}

func (p *Preferences) saveLocked() {
	b, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		utils.Sugar.Errorf("failed to marshal preferences: %v", err)
		return
	}
	if err := os.WriteFile(p.path, b, 0o600); err != nil {
		utils.Sugar.Errorf("failed to save preferences: %v", err)
	}
}
