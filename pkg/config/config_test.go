package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/dotdraw/pkg/errors"
	"github.com/matzehuels/dotdraw/pkg/graph"
	"github.com/matzehuels/dotdraw/pkg/layout"
	"github.com/matzehuels/dotdraw/pkg/pipeline"
)

const sampleTOML = `
[layout]
direction = "LR"
layer_spacing = 100
iterations = 8

[parse]
explicit_nodes = true

[output]
format = "json"
timestamp = true

[cache]
redis_url = "redis://localhost:6379/0"

[server]
addr = ":9090"
read_timeout = "5s"
`

const sampleYAML = `
layout:
  direction: LR
  layer_spacing: 100
  iterations: 8
parse:
  explicit_nodes: true
output:
  format: json
  timestamp: true
cache:
  redis_url: redis://localhost:6379/0
server:
  addr: ":9090"
  read_timeout: 5s
`

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		ext  string
		data string
	}{
		{".toml", sampleTOML},
		{".yaml", sampleYAML},
		{".yml", sampleYAML},
	} {
		t.Run(tt.ext, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.Layout.Direction != "LR" || cfg.Layout.LayerSpacing != 100 || cfg.Layout.Iterations != 8 {
				t.Errorf("Layout = %+v", cfg.Layout)
			}
			if !cfg.Parse.ExplicitNodes || cfg.Output.Format != "json" || !cfg.Output.Timestamp {
				t.Errorf("Parse/Output = %+v / %+v", cfg.Parse, cfg.Output)
			}
			if cfg.Server.Addr != ":9090" || cfg.Server.ReadTimeout != 5*time.Second {
				t.Errorf("Server = %+v", cfg.Server)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml"} {
		cfg, err := Parse(nil, ext)
		if err != nil {
			t.Errorf("Parse(empty %s) error = %v", ext, err)
			continue
		}
		if *cfg != (Config{}) {
			t.Errorf("Parse(empty %s) = %+v, want zero config", ext, cfg)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"bad direction", ".toml", "[layout]\ndirection = \"BT\""},
		{"negative spacing", ".yaml", "layout:\n  node_spacing: -4"},
		{"too many iterations", ".toml", "[layout]\niterations = 1000"},
		{"huge node width", ".toml", "[layout]\nnode_width = 1e9"},
		{"bad format", ".toml", "[output]\nformat = \"png\""},
		{"unknown toml key", ".toml", "[layout]\ndirecton = \"LR\""},
		{"unknown yaml key", ".yaml", "outptu:\n  format: json"},
		{"bad redis url", ".toml", "[cache]\nredis_url = \"http://x\""},
		{"broken toml", ".toml", "[layout"},
		{"unsupported ext", ".json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadAndDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, "dotdraw.yaml")
	if err := os.WriteFile(want, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}
	path, err := Discover(nested)
	if err != nil || path != want {
		t.Fatalf("Discover() = %q, %v; want %q", path, err, want)
	}

	cfg, err := LoadOrDefault("", nested)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Path != want || cfg.Layout.Direction != "LR" {
		t.Errorf("LoadOrDefault() = %+v", cfg)
	}

	if _, err := Load(filepath.Join(root, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestApply(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), ".toml")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	// Flags left everything unset: the file fills it in.
	var opts pipeline.Options
	cfg.Apply(&opts, now)
	if opts.Layout.Direction != graph.DirectionLeftRight || opts.Layout.LayerSpacing != 100 || opts.Layout.Iterations != 8 {
		t.Errorf("Layout = %+v", opts.Layout)
	}
	if !opts.ExplicitNodes || opts.Format != "json" {
		t.Errorf("opts = %+v", opts)
	}
	if !opts.Timestamp.Equal(now.Truncate(time.Millisecond)) {
		t.Errorf("Timestamp = %v", opts.Timestamp)
	}

	// Flags win over the file.
	opts = pipeline.Options{
		Format: "dot",
		Layout: layout.Options{Direction: graph.DirectionTopDown, LayerSpacing: 40},
	}
	cfg.Apply(&opts, now)
	if opts.Format != "dot" || opts.Layout.Direction != graph.DirectionTopDown || opts.Layout.LayerSpacing != 40 {
		t.Errorf("flags should take precedence: %+v", opts)
	}
}
