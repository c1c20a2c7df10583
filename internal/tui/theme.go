package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const themeConfigFileName = "themes.json"

type ThemeConfig struct {
	Default string           `json:"default"`
	Themes  map[string]Theme `json:"themes"`
}

type Theme struct {
	Name string `json:"-"`

	TitleFg   string `json:"title_fg"`
	CounterFg string `json:"counter_fg"`
	OkFg      string `json:"ok_fg"`
	FailedFg  string `json:"failed_fg"`
	PathFg    string `json:"path_fg"`
	DimFg     string `json:"dim_fg"`
	BarStart  string `json:"bar_start"`
	BarEnd    string `json:"bar_end"`
}

var (
	themeOnce sync.Once
	themeErr  error
)

var (
	titleStyle   lipgloss.Style
	counterStyle lipgloss.Style
	okStyle      lipgloss.Style
	failedStyle  lipgloss.Style
	pathStyle    lipgloss.Style
	dimStyle     lipgloss.Style

	barStart string
	barEnd   string
)

func init() {
	applyTheme(defaultTheme())
}

// LoadTheme applies the user's themes.json once. On error the default theme
// stays in effect.
func LoadTheme() error {
	return ensureThemeLoaded()
}

func ensureThemeLoaded() error {
	themeOnce.Do(func() {
		theme, err := loadThemeFromConfig()
		if err != nil {
			themeErr = err
			return
		}
		applyTheme(theme)
	})
	return themeErr
}

func loadThemeFromConfig() (Theme, error) {
	fallback := defaultTheme()
	configPath, err := themeConfigPath()
	if err != nil {
		return fallback, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, nil
		}
		return Theme{}, fmt.Errorf("read theme config: %w", err)
	}

	var cfg ThemeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Theme{}, fmt.Errorf("parse theme config: %w", err)
	}

	themeName := strings.TrimSpace(cfg.Default)
	if themeName == "" {
		themeName = "default"
	}

	theme, ok := cfg.Themes[themeName]
	if !ok {
		return Theme{}, fmt.Errorf("theme %q not found in %s", themeName, configPath)
	}
	theme.Name = themeName
	return mergeTheme(fallback, theme), nil
}

func themeConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pngquant", themeConfigFileName), nil
}

func defaultTheme() Theme {
	return Theme{
		Name:      "default",
		TitleFg:   "170",
		CounterFg: "243",
		OkFg:      "42",
		FailedFg:  "196",
		PathFg:    "231",
		DimFg:     "244",
		BarStart:  "#5A56E0",
		BarEnd:    "#EE6FF8",
	}
}

func mergeTheme(base Theme, override Theme) Theme {
	return Theme{
		Name:      override.Name,
		TitleFg:   pickColor(base.TitleFg, override.TitleFg),
		CounterFg: pickColor(base.CounterFg, override.CounterFg),
		OkFg:      pickColor(base.OkFg, override.OkFg),
		FailedFg:  pickColor(base.FailedFg, override.FailedFg),
		PathFg:    pickColor(base.PathFg, override.PathFg),
		DimFg:     pickColor(base.DimFg, override.DimFg),
		BarStart:  pickColor(base.BarStart, override.BarStart),
		BarEnd:    pickColor(base.BarEnd, override.BarEnd),
	}
}

func pickColor(base string, override string) string {
	if override != "" {
		return override
	}
	return base
}

func applyTheme(theme Theme) {
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.TitleFg))

	counterStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.CounterFg))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.OkFg)).
		Bold(true)

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.FailedFg)).
		Bold(true)

	pathStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.PathFg))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.DimFg))

	barStart = theme.BarStart
	barEnd = theme.BarEnd
}
