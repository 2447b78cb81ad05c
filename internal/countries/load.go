// internal/countries/load.go
//
// Process-wide dataset loading.
//
// Init behavior:
//   1. If COUNTRIES_FILE is set (or a path is passed), load that YAML file.
//   2. Otherwise fall back to the embedded assets/countries.yaml.
//
// Initialization runs once (sync.Once); later calls return the first result.
package countries

import (
	"fmt"
	"os"
	"sync"

	"github.com/robalobadob/capitals/assets"
)

var (
	initOnce   sync.Once
	loaded     *Dataset
	initialErr error
)

// Init loads the default dataset exactly once.
// An empty path selects the embedded dataset.
func Init(path string) error {
	initOnce.Do(func() {
		if path == "" {
			path = os.Getenv("COUNTRIES_FILE")
		}
		loaded, initialErr = Load(path)
	})
	return initialErr
}

// Default returns the dataset loaded by Init, or nil before Init.
func Default() *Dataset { return loaded }

// Load reads a dataset from path, or the embedded one when path is empty.
func Load(path string) (*Dataset, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = assets.Countries()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read countries %q: %w", path, err)
	}
	return Parse(data)
}
