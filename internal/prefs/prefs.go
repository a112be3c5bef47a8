// Package prefs handles tutor user preferences persistence.
// Preferences are stored in ~/.config/gittutor/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gittutor/tutor/internal/tomlfile"
)

// Prefs holds user preferences for the tutor.
type Prefs struct {
	Theme      string `toml:"theme"`
	CatalogTab string `toml:"catalog_tab"`
}

// Catalog tabs that may be remembered.
const (
	TabBrowse   = "browse"
	TabEnrolled = "enrolled"
	TabTeaching = "teaching"
)

const (
	defaultPrefsPath = "~/.config/gittutor/prefs.toml"
	defaultTheme     = "Slate"
	defaultTab       = TabBrowse
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is saved.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, CatalogTab: defaultTab}
}

// Load reads preferences from path, or the default path when empty. A
// missing file yields the defaults. An unreadable one also yields the
// defaults, together with the error so the caller can report it.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), err
	}

	p := Defaults()
	if _, err := tomlfile.Read(resolved, &p); err != nil {
		return Defaults(), err
	}
	return p.normalized(), nil
}

// normalized replaces blank or unknown values with their defaults.
func (p Prefs) normalized() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	switch p.CatalogTab {
	case TabBrowse, TabEnrolled, TabTeaching:
	default:
		p.CatalogTab = defaultTab
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := tomlfile.Write(resolved, p, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
