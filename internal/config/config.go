// Package config loads goforth settings from a TOML or YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the config file and command line.
type Config struct {
	Trace    bool     `toml:"trace" yaml:"trace"`
	Timeout  Duration `toml:"timeout" yaml:"timeout"`
	MemLimit uint     `toml:"mem-limit" yaml:"mem-limit"`
	PageSize uint     `toml:"page-size" yaml:"page-size"`
	Stack    uint     `toml:"stack" yaml:"stack"`
	RStack   uint     `toml:"rstack" yaml:"rstack"`
	Prelude  bool     `toml:"prelude" yaml:"prelude"`
	Sandbox  bool     `toml:"sandbox" yaml:"sandbox"`
	History  string   `toml:"history" yaml:"history"`
	Image    Image    `toml:"image" yaml:"image"`
}

// Image configures the image store.
type Image struct {
	Path string `toml:"path" yaml:"path"`
	Load string `toml:"load" yaml:"load"`
	Save string `toml:"save" yaml:"save"`
}

// Duration is a time.Duration written like "5s" in config files.
type Duration struct{ time.Duration }

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Default returns the settings used when neither file nor flag says otherwise.
func Default() Config {
	return Config{
		MemLimit: 4 << 20,
		Stack:    1024,
		RStack:   1024,
		Prelude:  true,
	}
}

// Load reads the file at path over Default(), choosing the format by file
// extension: .toml, or .yaml and .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg := Default()
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q for %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &cfg, nil
}
