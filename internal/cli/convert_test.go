package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/dotdraw/pkg/errors"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name                          string
		input, output, outDir, format string
		want                          string
	}{
		{"next to input", "graphs/deps.dot", "", "", "drawio", filepath.Join("graphs", "deps.drawio")},
		{"explicit output", "deps.dot", "out.xml", "", "drawio", "out.xml"},
		{"stdout", "deps.dot", "-", "", "drawio", "-"},
		{"out dir", "graphs/deps.dot", "", "build", "svg", filepath.Join("build", "deps.svg")},
		{"stdin to stdout", "-", "", "", "json", "-"},
		{"stdin to out dir", "-", "", "build", "json", filepath.Join("build", "stdin.json")},
		{"no extension", "Makefile.deps", "", "", "dot", "Makefile.dot"},
		{"graph output", "deps.dot", "", "", "graph", "deps.graph.json"},
		{"graph input", "graphs/deps.graph.json", "", "", "drawio", filepath.Join("graphs", "deps.drawio")},
		{"plain json input", "deps.json", "", "", "drawio", "deps.drawio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath(tt.input, tt.output, tt.outDir, tt.format)
			if err != nil {
				t.Fatalf("outputPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertFile(t *testing.T) {
	tc := newTestCLI(t)
	src := tc.write(t, "deps.dot", `digraph deps { app -> lib; app -> log; lib -> log }`)

	if err := tc.run("convert", src); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(tc.dir, "deps.drawio"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<mxfile", `name="deps"`, `value="app"`, `id="edge-2"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s", want)
		}
	}
	if strings.Contains(string(data), "modified=") {
		t.Error("output is timestamped without --timestamp")
	}
}

func TestConvertStdinToStdout(t *testing.T) {
	tc := newTestCLI(t)
	tc.in.WriteString("graph { a -- b }")

	if err := tc.run("convert", "-", "--format", "dot", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if got := tc.out.String(); !strings.HasPrefix(got, "graph {") || !strings.Contains(got, "a -- b") {
		t.Errorf("stdout = %q", got)
	}
}

func TestConvertManyToOutDir(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.write(t, "a.dot", "digraph { x -> y }")
	b := tc.write(t, "b.dot", "digraph { rankdir=LR; p -> q -> r }")
	outDir := filepath.Join(tc.dir, "out")

	if err := tc.run("convert", "--out-dir", outDir, "--jobs", "2", "--format", "json", a, b); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.json", "b.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestConvertFlagsOverrideConfig(t *testing.T) {
	tc := newTestCLI(t)
	if err := os.WriteFile(tc.config, []byte("[layout]\ndirection = \"LR\"\n[output]\nformat = \"json\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := tc.write(t, "g.dot", "digraph { a -> b }")

	if err := tc.run("convert", "--direction", "tb", "-o", "-", src); err != nil {
		t.Fatal(err)
	}
	out := tc.out.String()
	if !strings.Contains(out, `"direction": "TB"`) {
		t.Errorf("flag did not override config direction:\n%s", out)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		code errors.Code
	}{
		{"syntax", "digraph { a -> }", nil, errors.ErrCodeSyntax},
		{"explicit nodes", "digraph { a -> b }", []string{"--explicit-nodes"}, errors.ErrCodeSemantic},
		{"bad format", "digraph { a }", []string{"--format", "png"}, errors.ErrCodeInvalidFormat},
		{"bad direction", "digraph { a }", []string{"--direction", "up"}, errors.ErrCodeLayout},
		{"negative spacing", "digraph { a }", []string{"--node-spacing=-1"}, errors.ErrCodeLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCLI(t)
			src := tc.write(t, "g.dot", tt.src)
			err := tc.run(append([]string{"convert", "--no-cache", src}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if ExitCode(err) != ExitUserError {
				t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitUserError)
			}
		})
	}
}

func TestConvertInputErrors(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.write(t, "one/g.dot", "digraph { a }")
	b := tc.write(t, "two/g.dot", "digraph { b }")

	if err := tc.run("convert", "-o", "x.drawio", a, b); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("-o with two inputs: error = %v", err)
	}
	if err := tc.run("convert", "--out-dir", tc.dir, a, b); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("colliding outputs: error = %v", err)
	}
	if err := tc.run("convert", filepath.Join(tc.dir, "missing.dot")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input: error = %v", err)
	}
	if err := tc.run("convert", filepath.Join(tc.dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing graph input: error = %v", err)
	}
	if err := tc.run("convert", "--format", "dot", a); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("output over input: error = %v", err)
	}
}

func TestConvertStdinOnce(t *testing.T) {
	tc := newTestCLI(t)
	tc.in.WriteString("digraph { a -> b }")

	err := tc.run("convert", "--no-cache", "-", "-")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if ExitCode(err) != ExitUserError {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitUserError)
	}
	if tc.out.Len() != 0 {
		t.Errorf("nothing should be written, got %q", tc.out.String())
	}
}

func TestConvertGraphJSON(t *testing.T) {
	tc := newTestCLI(t)
	src := tc.write(t, "deps.dot", `digraph deps { rankdir=LR; app -> lib [label="uses"] }`)

	if err := tc.run("convert", "--no-cache", "--format", "graph", src); err != nil {
		t.Fatal(err)
	}
	graphFile := filepath.Join(tc.dir, "deps.graph.json")
	data, err := os.ReadFile(graphFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"from": "app"`) {
		t.Errorf("graph output = %s", data)
	}

	if err := tc.run("convert", "--no-cache", graphFile); err != nil {
		t.Fatal(err)
	}
	doc, err := os.ReadFile(filepath.Join(tc.dir, "deps.drawio"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`name="deps"`, `value="app"`, `value="uses"`} {
		if !strings.Contains(string(doc), want) {
			t.Errorf("document from graph JSON missing %s", want)
		}
	}

	bad := tc.write(t, "bad.json", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"zz"}]}`)
	err = tc.run("convert", "--no-cache", bad)
	if !errors.Is(err, errors.ErrCodeInvalidInput) || ExitCode(err) != ExitUserError {
		t.Errorf("invalid graph JSON: error = %v, exit %d", err, ExitCode(err))
	}
}

func TestConvertDetailedSVG(t *testing.T) {
	tc := newTestCLI(t)
	src := tc.write(t, "g.dot", `digraph { x [color=red] }`)

	if err := tc.run("convert", "--no-cache", "--format", "svg", "--detailed", "-o", "-", src); err != nil {
		t.Fatal(err)
	}
	if out := tc.out.String(); !strings.Contains(out, "<svg") || !strings.Contains(out, "color: red") {
		t.Errorf("detailed svg = %q", out)
	}
}
