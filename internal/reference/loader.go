package reference

import (
	"fmt"
	"os"

	"github.com/kruegge82/adressCorrector/app/models"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a reference dataset from a YAML or JSON file.
func LoadFile(path string) (models.Dataset, error) {
	var data models.Dataset
	b, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read reference data %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return data, fmt.Errorf("parse reference data %s: %w", path, err)
	}
	return Prepare(data), nil
}
