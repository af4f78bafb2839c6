package confirm

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// LoadOverrides reads the caller override bags from a YAML file on fs:
//
//	identifier:
//	  placeholder: Work email
//	submit:
//	  label: Verify
//	  className: brand
//
// An empty path yields no overrides.
func LoadOverrides(fs afero.Fs, path string) (Overrides, error) {
	var o Overrides
	if path == "" {
		return o, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return o, fmt.Errorf("failed to read form overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("failed to parse form overrides %s: %w", path, err)
	}
	return o, nil
}
