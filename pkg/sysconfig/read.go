package sysconfig

import (
	"fmt"
	"path/filepath"

	"github.com/joshuapare/leosyscfg/internal/catalog"
	"github.com/joshuapare/leosyscfg/internal/memtext"
	"github.com/joshuapare/leosyscfg/internal/mmfile"
)

// ReadImage decodes the text image at path into words.
func ReadImage(path string) ([]uint32, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer release()

	words, err := memtext.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return words, nil
}

// CatalogPath returns the catalog location used for imagePath.
func CatalogPath(imagePath, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(filepath.Dir(imagePath), catalog.DefaultFileName)
}

// LoadCatalog loads the register catalog for imagePath.
func LoadCatalog(imagePath, override string) (*catalog.Catalog, error) {
	return catalog.LoadFile(CatalogPath(imagePath, override))
}
