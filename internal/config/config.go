// Package config loads the optional .pysync.yaml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up at the repository root.
const FileName = ".pysync.yaml"

// ErrInvalid wraps every decoding or validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds project settings. Zero values are filled by Default.
type Config struct {
	Author      string   `yaml:"author,omitempty"`
	Email       string   `yaml:"email,omitempty" validate:"omitempty,email"`
	SourceRoots []string `yaml:"source_roots" validate:"dive,required"`
	Exclude     []string `yaml:"exclude,omitempty" validate:"dive,glob"`
	VersionFile string   `yaml:"version_file" validate:"required"`
	Workers     int      `yaml:"workers,omitempty" validate:"omitempty,min=1,max=64"`
	LogLevel    string   `yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("glob", validateGlob)
}

func validateGlob(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SourceRoots: []string{"src"},
		VersionFile: "pyproject.toml",
		Workers:     defaultWorkers(),
		LogLevel:    "warn",
	}
}

func defaultWorkers() int {
	return min(max(runtime.GOMAXPROCS(0), 1), 64)
}

// Load reads path over the defaults. A missing file yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML into cfg, rejecting unknown keys, then fills zero
// values from Default and validates the result.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.fill()
	return cfg.Validate()
}

func (c *Config) fill() {
	d := Default()
	if len(c.SourceRoots) == 0 {
		c.SourceRoots = d.SourceRoots
	}
	if c.VersionFile == "" {
		c.VersionFile = d.VersionFile
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Find returns the config path for a repository root.
func Find(root string) string {
	return filepath.Join(root, FileName)
}
