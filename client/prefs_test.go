package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postdeck/postdeck/models"
)

func TestPreferencesDefaults(t *testing.T) {
	p := LoadPreferences(t.TempDir())

	assert.True(t, p.DarkMode())
	assert.False(t, p.UseAmericanDateFormat())
	assert.Equal(t, 14, p.FontSize())
	assert.Equal(t, models.ValidPlatforms, p.SelectedPlatforms())
}

func TestPreferencesRoundTrip(t *testing.T) {
	dir := t.TempDir()

	p := LoadPreferences(dir)
	p.SetDarkMode(false)
	p.SetFontSize(18)
	p.SetUseAmericanDateFormat(true)
	p.DeselectPlatform("TIKTOK")

	reloaded := LoadPreferences(dir)
	assert.False(t, reloaded.DarkMode())
	assert.Equal(t, 18, reloaded.FontSize())
	assert.True(t, reloaded.UseAmericanDateFormat())
	assert.NotContains(t, reloaded.SelectedPlatforms(), "TIKTOK")
}

func TestPreferencesKeepsLastSelectedPlatform(t *testing.T) {
	p := LoadPreferences(t.TempDir())

	for _, platform := range models.ValidPlatforms[1:] {
		require.True(t, p.DeselectPlatform(platform))
	}
	require.Len(t, p.SelectedPlatforms(), 1)

	assert.False(t, p.DeselectPlatform(p.SelectedPlatforms()[0]))
	assert.Len(t, p.SelectedPlatforms(), 1)
}

func TestPreferencesSelectPlatformIsIdempotent(t *testing.T) {
	p := LoadPreferences(t.TempDir())
	p.DeselectPlatform("X")

	p.SelectPlatform("X")
	p.SelectPlatform("X")

	count := 0
	for _, platform := range p.SelectedPlatforms() {
		if platform == "X" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPreferencesFormatDate(t *testing.T) {
	p := LoadPreferences(t.TempDir())
	date := time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "15/09/2026", p.FormatDate(date))
	p.SetUseAmericanDateFormat(true)
	assert.Equal(t, "09/15/2026", p.FormatDate(date))
}
