// Package config loads dotdraw configuration files.
//
// A project may carry a dotdraw.toml, dotdraw.yaml or dotdraw.yml next to its
// graph descriptions:
//
//	[layout]
//	direction = "LR"
//	layer_spacing = 100
//
//	[output]
//	format = "drawio"
//	timestamp = true
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
// Values from the file sit below command-line flags: [Config.Apply] only
// fills options the caller left unset. Unknown keys are rejected so typos do
// not pass silently.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

// FileNames lists the file names Discover looks for, in order.
var FileNames = []string{"dotdraw.toml", "dotdraw.yaml", "dotdraw.yml"}

// Config is the contents of a configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout" yaml:"layout"`
	Parse  ParseConfig  `toml:"parse" yaml:"parse"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Server ServerConfig `toml:"server" yaml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-" yaml:"-"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	Direction    string  `toml:"direction" yaml:"direction" validate:"omitempty,oneof=TB LR"`
	LayerSpacing float64 `toml:"layer_spacing" yaml:"layer_spacing" validate:"gte=0,lte=100000"`
	NodeSpacing  float64 `toml:"node_spacing" yaml:"node_spacing" validate:"gte=0,lte=100000"`
	NodeWidth    float64 `toml:"node_width" yaml:"node_width" validate:"gte=0,lte=100000"`
	NodeHeight   float64 `toml:"node_height" yaml:"node_height" validate:"gte=0,lte=100000"`
	Iterations   int     `toml:"iterations" yaml:"iterations" validate:"gte=0,lte=100"`
}

// ParseConfig holds parser strictness settings.
type ParseConfig struct {
	ExplicitNodes  bool `toml:"explicit_nodes" yaml:"explicit_nodes"`
	NoRedefinition bool `toml:"no_redefinition" yaml:"no_redefinition"`
}

// OutputConfig holds output defaults.
type OutputConfig struct {
	Format    string `toml:"format" yaml:"format" validate:"omitempty,oneof=drawio json graph dot svg"`
	Dir       string `toml:"dir" yaml:"dir"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"` // Stamp documents with the conversion time
}

// CacheConfig selects the document cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	MaxBodyBytes int64         `toml:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=0"`
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.New(errors.ErrCodeInvalidConfig, "%s: %v fails %q", strings.ToLower(fe.Namespace()), fe.Value(), fe.Tag())
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	}
	return nil
}

// Load reads and validates the configuration file at path. The format is
// chosen by extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes and validates configuration data. ext is the file
// extension that names the format (".toml", ".yaml" or ".yml").
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover looks for a configuration file in dir and its parents, stopping
// at the first directory that has one. It returns "" when none exists.
func Discover(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadOrDefault loads path if set, otherwise the discovered file from dir,
// otherwise an empty configuration.
func LoadOrDefault(path, dir string) (*Config, error) {
	if path == "" {
		found, err := Discover(dir)
		if err != nil {
			return nil, err
		}
		if found == "" {
			return &Config{}, nil
		}
		path = found
	}
	return Load(path)
}

// Apply fills the options the caller left unset with configured values.
// now stamps documents when Output.Timestamp is set.
func (c *Config) Apply(opts *pipeline.Options, now time.Time) {
	l := &opts.Layout
	if l.Direction == graph.DirectionUnset {
		l.Direction = graph.Direction(c.Layout.Direction)
	}
	l.LayerSpacing = orDefault(l.LayerSpacing, c.Layout.LayerSpacing)
	l.NodeSpacing = orDefault(l.NodeSpacing, c.Layout.NodeSpacing)
	l.NodeWidth = orDefault(l.NodeWidth, c.Layout.NodeWidth)
	l.NodeHeight = orDefault(l.NodeHeight, c.Layout.NodeHeight)
	l.Iterations = orDefault(l.Iterations, c.Layout.Iterations)

	opts.ExplicitNodes = opts.ExplicitNodes || c.Parse.ExplicitNodes
	opts.NoRedefinition = opts.NoRedefinition || c.Parse.NoRedefinition

	if opts.Format == "" {
		opts.Format = c.Output.Format
	}
	if opts.Timestamp.IsZero() && c.Output.Timestamp {
		opts.Timestamp = now.UTC().Truncate(time.Millisecond)
	}
}

func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}
