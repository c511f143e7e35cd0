package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Project holds the translation project settings read from blendin.json.
type Project struct {
	ProjectID      string   `mapstructure:"projectId"`
	APIToken       string   `mapstructure:"apiToken"`
	SourceLocale   string   `mapstructure:"sourceLocale"`
	DefaultLocale  string   `mapstructure:"defaultLocale"`
	TargetLocales  []string `mapstructure:"targetLocales"`
	BaseBranchName string   `mapstructure:"baseBranchName"`
	PRBranchName   string   `mapstructure:"prBranchName"`
	LocalesPath    string   `mapstructure:"localesPath"`
}

// Validate reports missing required settings.
func (p *Project) Validate() error {
	var missing []string
	if p.ProjectID == "" {
		missing = append(missing, "projectId")
	}
	if p.APIToken == "" {
		missing = append(missing, "apiToken")
	}
	if p.SourceLocale == "" {
		missing = append(missing, "sourceLocale")
	}
	if len(p.TargetLocales) == 0 {
		missing = append(missing, "targetLocales")
	}
	if len(missing) > 0 {
		return fmt.Errorf("project settings missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadProject reads the project settings file. INPUT_API_TOKEN, when set,
// replaces the token stored in the file.
func LoadProject(path string) (*Project, error) {
	if path == "" {
		path = DefaultProjectFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.BindEnv("apiToken", EnvPrefix+"_API_TOKEN"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("reading project file %s: %w", path, err)
	}

	var project Project
	if err := v.Unmarshal(&project); err != nil {
		return nil, fmt.Errorf("unmarshalling project file: %w", err)
	}

	return &project, nil
}
