// Package config loads tide configuration files.
//
// The default document is tide.toml; tide.yaml and tide.yml are accepted as
// well and decoded with the same field names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the file `tide init` writes and `tide run` reads by default.
const DefaultFile = "tide.toml"

// Config is the loaded configuration. Commands holds the command sets from
// either spelling of the command table.
type Config struct {
	RootDir  string              `toml:"root_dir" yaml:"root_dir"`
	Commands map[string][]string `toml:"command" yaml:"command"`
	Exclude  Exclude             `toml:"exclude" yaml:"exclude"`
	Control  Control             `toml:"control" yaml:"control"`
}

// Exclude lists names skipped by the change detector.
type Exclude struct {
	Dir  []string `toml:"dir" yaml:"dir"`
	File []string `toml:"file" yaml:"file"`
	Ext  []string `toml:"ext" yaml:"ext"`
}

// Control configures the optional health endpoint.
type Control struct {
	Address string `toml:"address" yaml:"address"`
}

// document is the decoded file. The command map may be spelled "command"
// or "commands"; both are merged into Config.Commands.
type document struct {
	RootDir  string              `toml:"root_dir" yaml:"root_dir"`
	Command  map[string][]string `toml:"command" yaml:"command"`
	Commands map[string][]string `toml:"commands" yaml:"commands"`
	Exclude  Exclude             `toml:"exclude" yaml:"exclude"`
	Control  Control             `toml:"control" yaml:"control"`
}

func (d *document) config() (*Config, error) {
	cfg := &Config{
		RootDir:  d.RootDir,
		Commands: make(map[string][]string, len(d.Command)+len(d.Commands)),
		Exclude:  d.Exclude,
		Control:  d.Control,
	}
	for name, commands := range d.Command {
		cfg.Commands[name] = commands
	}
	for name, commands := range d.Commands {
		if _, dup := cfg.Commands[name]; dup {
			return nil, fmt.Errorf("command set %q is defined under both command and commands", name)
		}
		cfg.Commands[name] = commands
	}
	return cfg, nil
}

// SelectionError reports an unknown or empty command set.
type SelectionError struct {
	Name  string
	Known []string
}

func (e *SelectionError) Error() string {
	if e.Name == "" {
		return "no command set selected"
	}
	if len(e.Known) == 0 {
		return fmt.Sprintf("command set %q not found: no command sets configured", e.Name)
	}
	return fmt.Sprintf("command set %q not found or empty; available: %s", e.Name, strings.Join(e.Known, ", "))
}

// Load reads and decodes the configuration file at path. An empty root_dir
// defaults to ".".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	doc := &document{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, doc)
	default:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg, err := doc.config()
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RootDir == "" {
		cfg.RootDir = "."
	}
	return cfg, nil
}

// Resolve returns path if it exists. For the default file name it falls back
// to tide.yaml and tide.yml in the same directory.
func Resolve(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if filepath.Base(path) != DefaultFile {
		return "", fmt.Errorf("config %s: %w", path, os.ErrNotExist)
	}
	dir := filepath.Dir(path)
	for _, name := range []string{"tide.yaml", "tide.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("config %s: %w (run `tide init` to create one)", path, os.ErrNotExist)
}

// Select returns the command list registered under name. A missing name or
// an empty list is a *SelectionError.
func (c *Config) Select(name string) ([]string, error) {
	commands, ok := c.Commands[name]
	if !ok || len(commands) == 0 || name == "" {
		return nil, &SelectionError{Name: name, Known: c.Names()}
	}
	return append([]string(nil), commands...), nil
}

// Names lists the non-empty command sets in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Commands))
	for name, commands := range c.Commands {
		if len(commands) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
