package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Export writes the document as indented JSON.
func Export(w io.Writer, settings *Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}

// Import decodes a document previously written by Export, or a settings.json
// of the same shape. Missing preferences take their defaults.
func Import(r io.Reader) (*Settings, error) {
	settings := DefaultSettings()
	if err := json.NewDecoder(r).Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	defaults := DefaultSettings().Preferences
	if settings.Preferences.DefaultCountry == "" {
		settings.Preferences.DefaultCountry = defaults.DefaultCountry
	}
	if settings.Preferences.DefaultLanguage == "" {
		settings.Preferences.DefaultLanguage = defaults.DefaultLanguage
	}
	if settings.Preferences.Theme == "" {
		settings.Preferences.Theme = defaults.Theme
	}
	for i := range settings.Folders {
		if settings.Folders[i].ID == "" {
			return nil, fmt.Errorf("folder %q has no id", settings.Folders[i].Name)
		}
	}

	settings.Normalize()
	return settings, nil
}

func ExportFile(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := Export(f, settings); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ImportFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()
	return Import(f)
}
