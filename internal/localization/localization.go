// Package localization loads translation strings from JSON files so the
// Telegram transport can talk to users in their own language.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLang is the fallback language when a key is missing.
const DefaultLang = "en"

// Localizer holds per-language translation tables loaded from a directory
// of <lang>.json files.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer loads every <lang>.json file from the directory.
func NewLocalizer(path string) (*Localizer, error) {
	l := &Localizer{translations: make(map[string]map[string]string)}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")
		if err := l.loadFile(lang, filepath.Join(path, file.Name())); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Localizer) loadFile(lang, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read localization file %s: %w", path, err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse localization file %s: %w", path, err)
	}
	l.translations[lang] = table
	return nil
}

// GetString returns the localized string for a key, falling back to the
// default language and finally to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if table, ok := l.translations[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if lang != DefaultLang {
		if table, ok := l.translations[DefaultLang]; ok {
			if value, ok := table[key]; ok {
				return value
			}
		}
	}
	return key
}
