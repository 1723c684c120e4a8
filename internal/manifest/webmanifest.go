package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Icon is a single installable-app icon entry.
type Icon struct {
	Src   string `json:"src" validate:"required"`
	Sizes string `json:"sizes" validate:"required"`
	Type  string `json:"type" validate:"required"`
}

// WebManifest is the installability metadata consumed by the host
// environment. The cache engine never reads it; it is validated and served
// as-is.
type WebManifest struct {
	Name            string `json:"name" validate:"required"`
	ShortName       string `json:"short_name" validate:"required"`
	StartURL        string `json:"start_url" validate:"required"`
	Display         string `json:"display" validate:"required,oneof=standalone fullscreen minimal-ui browser"`
	BackgroundColor string `json:"background_color" validate:"required"`
	ThemeColor      string `json:"theme_color" validate:"required"`
	Icons           []Icon `json:"icons" validate:"required,min=1,dive"`
}

// LoadWebManifest reads and validates the web app manifest.
func LoadWebManifest(path string) (*WebManifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open web manifest: %w", err)
	}
	defer file.Close()

	var m WebManifest
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode web manifest: %w", err)
	}
	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("validate web manifest: %w", err)
	}
	return &m, nil
}
