package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Palettes holds the dark and light variants
type Palettes struct {
	Dark  Palette `yaml:"dark"`
	Light Palette `yaml:"light"`
}

// DefaultPalettes returns the built-in palettes
func DefaultPalettes() Palettes {
	return Palettes{Dark: DarkPalette(), Light: LightPalette()}
}

// For returns the palette for the given mode
func (p Palettes) For(dark bool) Palette {
	if dark {
		return p.Dark
	}
	return p.Light
}

// LoadPalettes reads a YAML palette file. Colors missing from the file keep
// their built-in values; an empty path returns the defaults.
func LoadPalettes(path string) (Palettes, error) {
	defaults := DefaultPalettes()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return defaults, fmt.Errorf("failed to read palette file: %w", err)
	}

	var file struct {
		Inbox Palettes `yaml:"inboxtui"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return defaults, fmt.Errorf("failed to parse palette file: %w", err)
	}

	return Palettes{
		Dark:  file.Inbox.Dark.merge(defaults.Dark),
		Light: file.Inbox.Light.merge(defaults.Light),
	}, nil
}

// SavePalettes writes palettes in the format LoadPalettes reads
func SavePalettes(path string, p Palettes) error {
	data, err := yaml.Marshal(struct {
		Inbox Palettes `yaml:"inboxtui"`
	}{Inbox: p})
	if err != nil {
		return fmt.Errorf("failed to marshal palettes: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write palette file: %w", err)
	}
	return nil
}
