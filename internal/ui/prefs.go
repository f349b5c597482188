package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wanderlist/internal/model"
	"wanderlist/internal/query"
)

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Sort     string `json:"sort"`
	Category string `json:"category"`
	TipType  string `json:"tip_type"`
}

func defaultUIPreferences() UIPreferences {
	return UIPreferences{
		Sort:     string(query.DefaultSort),
		Category: model.CategoryAll,
	}
}

// PrefsPath returns the preferences file inside configDir.
func PrefsPath(configDir string) string {
	return filepath.Join(configDir, "ui_prefs.json")
}

func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return defaultUIPreferences()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultUIPreferences()
	}

	prefs := defaultUIPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultUIPreferences()
	}
	if _, ok := query.ParseSortKey(prefs.Sort); !ok {
		prefs.Sort = string(query.DefaultSort)
	}
	if prefs.Category != model.CategoryAll && !model.IsKnownCategory(prefs.Category) {
		prefs.Category = model.CategoryAll
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
