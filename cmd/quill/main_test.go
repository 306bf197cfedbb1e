package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `<!DOCTYPE html>
<html><body>
  <div style="height: 100px"></div>
  <div style="height: 50px; overflow: auto"><p style="height: 200px"></p></div>
  <ol><li>one</li><li>two</li></ol>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command with a fresh app and returns its standard
// output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(newApp())
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runYAML(t *testing.T, args ...string) frameGeometry {
	t.Helper()
	out, err := run(t, append([]string{"layout", "--format", "yaml"}, args...)...)
	require.NoError(t, err)
	var g frameGeometry
	require.NoError(t, yaml.Unmarshal([]byte(out), &g), out)
	require.NotNil(t, g.Root)
	return g
}

func find(b *boxGeometry, name string) *boxGeometry {
	if b.Box == name {
		return b
	}
	for _, c := range b.Children {
		if f := find(c, name); f != nil {
			return f
		}
	}
	return nil
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "quill version "+Version+"\n", out)
}

func TestLayoutTreeDump(t *testing.T) {
	out, err := run(t, "layout", writeFile(t, "doc.html", sample))
	require.NoError(t, err)
	assert.Contains(t, out, "node 0")
	assert.Contains(t, out, "::marker")
	assert.Contains(t, out, "scrollbars=vertical")
}

func TestLayoutYAML(t *testing.T) {
	g := runYAML(t, writeFile(t, "doc.html", sample))
	assert.Equal(t, 800.0, g.Root.Rect[2])
	assert.Equal(t, 2, g.Iterations)
	assert.Equal(t, []int{g.Root.Index}, g.Roots)

	first := find(g.Root, "div")
	require.NotNil(t, first)
	assert.Equal(t, 100.0, first.Rect[3])

	marker := find(g.Root, "::marker")
	require.NotNil(t, marker)
	assert.Equal(t, "1.", marker.Marker)
}

func TestLayoutSecondPassFindsNothingToDo(t *testing.T) {
	g := runYAML(t, "--passes", "2", writeFile(t, "doc.html", sample))
	assert.Empty(t, g.Roots)
	assert.Equal(t, 800.0, g.Root.Rect[2])
}

func TestConfigFileAndEnvironment(t *testing.T) {
	doc := writeFile(t, "doc.html", sample)
	cfg := writeFile(t, "quill.yaml", "viewport:\n  width: 300\n  height: 200\n")
	g := runYAML(t, "--config", cfg, doc)
	assert.Equal(t, 300.0, g.Root.Rect[2])

	t.Setenv("QUILL_VIEWPORT_WIDTH", "400")
	g = runYAML(t, doc)
	assert.Equal(t, 400.0, g.Root.Rect[2])

	g = runYAML(t, "--width", "500", doc)
	assert.Equal(t, 500.0, g.Root.Rect[2], "flags win over the environment")
}

func TestPagedFlag(t *testing.T) {
	doc := writeFile(t, "paged.html", `<body><div style="height: 100px"></div><div style="height: 100px"></div><div style="height: 100px"></div></body>`)
	g := runYAML(t, "--page-height", "100", doc)
	assert.Equal(t, 3, g.Pages)
	assert.Equal(t, 1, g.Iterations)
}

func TestInvalidConfiguration(t *testing.T) {
	doc := writeFile(t, "doc.html", sample)
	_, err := run(t, "layout", "--format", "xml", doc)
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "layout", "--width", "0", doc)
	assert.ErrorContains(t, err, "invalid viewport")

	_, err = run(t, "layout", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	_, err := run(t, "render", "--width", "320", "--height", "240", "-o", out, writeFile(t, "doc.html", sample))
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}
