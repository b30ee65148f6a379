package datastore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"orders-management/internal/model"
)

// catalogFile is the on-disk layout of a seed catalog:
//
//	products:
//	  - name: Widget
//	    price: 10.0
//	    stock: 5
type catalogFile struct {
	Products []model.Product `yaml:"products"`
}

// ReadCatalog decodes a seed catalog.
func ReadCatalog(r io.Reader) ([]model.Product, error) {
	var c catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return c.Products, nil
}

// LoadCatalog reads a seed catalog from path.
func LoadCatalog(path string) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

