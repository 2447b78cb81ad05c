// assets/embed.go
//
// Embedded static data shipped with the binary.
//   - countries.yaml: the default reference dataset (country → capital).
package assets

import (
	"embed"
)

//go:embed countries.yaml
var FS embed.FS

// DefaultCountriesFile is the embedded dataset name inside FS.
const DefaultCountriesFile = "countries.yaml"

// Countries returns the raw embedded dataset.
func Countries() ([]byte, error) {
	return FS.ReadFile(DefaultCountriesFile)
}
