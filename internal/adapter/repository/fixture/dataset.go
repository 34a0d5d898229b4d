package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/V4T54L/schoolsite/internal/domain"
)

//go:embed seed.json
var defaultSeed []byte

// Dataset is the static catalog of schools and their records.
type Dataset struct {
	Schools []domain.Tenant `json:"schools"`
	Posts   []domain.Post   `json:"posts"`
	Staff   []domain.Staff  `json:"staff"`
}

// Parse decodes a dataset from JSON.
func Parse(raw []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode fixture dataset: %w", err)
	}
	return &ds, nil
}

// LoadFile reads a dataset from path.
func LoadFile(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture dataset: %w", err)
	}
	return Parse(raw)
}

// Load returns the dataset at path, or the embedded default when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	return LoadFile(path)
}
