//go:build integration

package integration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Fixture is a source tree under testdata/fixtures with its extraction settings.
type Fixture struct {
	Dir       string   `yaml:"dir"`
	Exclude   []string `yaml:"exclude"`
	Marker    string   `yaml:"marker"`
	Name      string   `yaml:"name"`
	TextField string   `yaml:"textField"`
}

// FixturesConfig holds the list of fixtures to extract.
type FixturesConfig struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// Root returns the absolute path of the fixture tree.
func (f Fixture) Root() (string, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(testDataDir, "fixtures", f.Dir), nil
}

// LoadFixtures loads fixture definitions from testdata/fixtures.yaml.
func LoadFixtures() (*FixturesConfig, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return nil, err
	}
	return loadFixturesFromPath(filepath.Join(testDataDir, "fixtures.yaml"))
}

func loadFixturesFromPath(path string) (*FixturesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures config from %s: %w", path, err)
	}

	var config FixturesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshal fixtures config: %w", err)
	}

	if err := validateFixturesConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid fixtures config: %w", err)
	}

	return &config, nil
}

func validateFixturesConfig(config *FixturesConfig) error {
	if len(config.Fixtures) == 0 {
		return errors.New("no fixtures defined")
	}

	seen := make(map[string]bool)
	for i, f := range config.Fixtures {
		if f.Name == "" {
			return fmt.Errorf("fixture %d: name is required", i)
		}
		if f.Dir == "" {
			return fmt.Errorf("fixture %s: dir is required", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("fixture %s: duplicate name", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func getTestDataDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return filepath.Join(wd, "testdata"), nil
}
