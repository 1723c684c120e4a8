package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// PrecacheManifest lists the assets fetched and stored unconditionally
// when a cache version installs. The maintainer bumps Version on every
// deployment that changes cached content.
type PrecacheManifest struct {
	Version string   `json:"version" validate:"required"`
	Root    string   `json:"root"`
	Assets  []string `json:"assets" validate:"required,min=1,dive,required"`
}

// ApplyDefaults fills optional fields.
func (m *PrecacheManifest) ApplyDefaults() {
	if m.Root == "" {
		m.Root = "/index.html"
	}
}

// LoadPrecache reads and validates the precache manifest. The root
// document must be one of the listed assets so the offline document
// fallback is always available after a successful install.
func LoadPrecache(path string) (*PrecacheManifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open precache manifest: %w", err)
	}
	defer file.Close()

	var m PrecacheManifest
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode precache manifest: %w", err)
	}
	m.ApplyDefaults()

	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("validate precache manifest: %w", err)
	}

	hasRoot := false
	for _, asset := range m.Assets {
		if asset == m.Root {
			hasRoot = true
			break
		}
	}
	if !hasRoot {
		return nil, fmt.Errorf("precache manifest %s does not list root document %s", m.Version, m.Root)
	}

	return &m, nil
}
