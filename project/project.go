package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "mesher.yaml"

// Config represents the project configuration from mesher.yaml.
type Config struct {
	Name      string        `yaml:"name"`
	ModelsDir string        `yaml:"models_dir"`
	OutputDir string        `yaml:"output_dir"`
	Export    ExportConfig  `yaml:"export"`
	Preview   PreviewConfig `yaml:"preview"`
	// Timeout bounds the conversion of a single model.
	Timeout time.Duration `yaml:"timeout"`
}

type ExportConfig struct {
	OBJ bool `yaml:"obj"`
}

type PreviewConfig struct {
	Enabled bool    `yaml:"enabled"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Yaw     float64 `yaml:"yaw"`
	Pitch   float64 `yaml:"pitch"`
}

// Default returns the configuration used for every key mesher.yaml leaves
// out.
func Default() Config {
	return Config{
		ModelsDir: "models",
		OutputDir: "build",
		Export:    ExportConfig{OBJ: true},
		Preview: PreviewConfig{
			Enabled: true,
			Width:   512,
			Height:  512,
			Yaw:     35,
			Pitch:   30,
		},
		Timeout: 30 * time.Second,
	}
}

// FindProjectRoot walks up from the current working directory looking for mesher.yaml.
// Returns the directory containing mesher.yaml, or an error if not found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return FindProjectRootFrom(cwd)
}

// FindProjectRootFrom is FindProjectRoot starting at dir.
func FindProjectRootFrom(start string) (string, error) {
	dir := start
	for {
		configPath := filepath.Join(dir, configFileName)
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found in any parent directory of %s", configFileName, start)
		}
		dir = parent
	}
}

// LoadConfig loads and parses the mesher.yaml file from the given project root.
func LoadConfig(projectRoot string) (*Config, error) {
	configPath := filepath.Join(projectRoot, configFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFileName, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFileName, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configFileName, err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("'name' field is required")
	}
	if c.ModelsDir == "" {
		return fmt.Errorf("'models_dir' must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("'output_dir' must not be empty")
	}
	if c.Preview.Enabled && (c.Preview.Width <= 0 || c.Preview.Height <= 0) {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.Preview.Width, c.Preview.Height)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("'timeout' must be positive")
	}
	return nil
}

// ModelsPath returns the absolute models directory of the project at root.
func (c *Config) ModelsPath(root string) string {
	return resolve(root, c.ModelsDir)
}

// OutputPath returns the absolute output directory of the project at root.
func (c *Config) OutputPath(root string) string {
	return resolve(root, c.OutputDir)
}

func resolve(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Fingerprint summarizes the settings that change build output. Models are
// rebuilt when it changes.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("obj=%t preview=%t %dx%d yaw=%g pitch=%g",
		c.Export.OBJ, c.Preview.Enabled, c.Preview.Width, c.Preview.Height, c.Preview.Yaw, c.Preview.Pitch)
}
