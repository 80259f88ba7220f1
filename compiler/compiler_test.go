package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/resolver"
	"github.com/rubiojr/party/sourcemap"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Build.Output = filepath.Join(t.TempDir(), "out")
	cfg.Cache.Enabled = false
	return cfg
}

func newCompiler(t *testing.T, cfg Config) *Compiler {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		path    string
		dir     string
		inPlace bool
		want    string
	}{
		{"main.es6", "", false, "main"},
		{"lib/util.js", "", false, "lib/util"},
		{"./lib/util.es6", "", true, "lib/util"},
		{"src/lib/util.es6", "src", false, "lib/util"},
		{"src/lib/util.es6", "src", true, "src/lib/util"},
		{"src/data.json", "src", false, "data.json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleName(filepath.FromSlash(tt.path), filepath.FromSlash(tt.dir), tt.inPlace))
		})
	}
}

func TestCompileSource(t *testing.T) {
	c := newCompiler(t, testConfig(t))
	m, err := c.CompileSource([]byte("import x from './x'\nexport var y = x => x * 2\n"), "lib/main.es6")
	require.NoError(t, err)

	assert.Equal(t, "lib/main", m.Name)
	assert.Equal(t, []string{"./x"}, m.Requires)
	assert.Equal(t, []string{"lib/x"}, m.Deps)
	assert.Contains(t, m.Code, "require('./x')")
	assert.Contains(t, m.Code, "exports.y = function (x)")
	assert.NotContains(t, m.Code, "=>")
	assert.Nil(t, m.SourceMap)
	require.NoError(t, ast.SubsetCheck().Check(m.Program))
}

func TestCompileSourceErrors(t *testing.T) {
	c := newCompiler(t, testConfig(t))

	_, err := c.CompileSource([]byte("var = 1"), "bad.es6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.es6:1")

	_, err = c.CompileSource([]byte("var x = 1\nvar {a}\n"), "pat.es6")
	var aerr *ast.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, ast.ErrMalformedPattern, aerr.Kind)
	assert.Equal(t, 2, aerr.Pos.Line)
}

func TestCompileSourceWarnings(t *testing.T) {
	c := newCompiler(t, testConfig(t))
	m, err := c.CompileSource([]byte("class K {}\n"), "k.es6")
	require.NoError(t, err)
	require.Len(t, m.Warnings, 1)
	assert.Equal(t, ast.KindClassDecl, m.Warnings[0].Node)
}

func TestCompileEscapePolicy(t *testing.T) {
	src := []byte("import up from '../../outside'\n")

	cfg := testConfig(t)
	m, err := newCompiler(t, cfg).CompileSource(src, "a/main.es6")
	require.NoError(t, err, "escapes only warn by default")
	assert.Equal(t, []string{"../outside"}, m.Deps)

	cfg.Resolve.Escape = resolver.Reject
	_, err = newCompiler(t, cfg).CompileSource(src, "a/main.es6")
	assert.ErrorIs(t, err, resolver.ErrEscapesRoot)
}

func TestCompileSourceMaps(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.SourceMaps = true
	m, err := newCompiler(t, cfg).CompileSource([]byte("var [a, b] = pair\n"), "pair.es6")
	require.NoError(t, err)
	require.NotNil(t, m.SourceMap)
	assert.Equal(t, "pair.js", m.SourceMap.File)
	assert.Equal(t, []string{"pair.es6"}, m.SourceMap.Sources)
	mappings, err := sourcemap.Decode(m.SourceMap.Mappings)
	require.NoError(t, err)
	assert.NotEmpty(t, mappings)
}

func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
	return root
}

func TestBuild(t *testing.T) {
	src := newProject(t, map[string]string{
		"main.es6":       "import {double} from './lib/math'\nexport var four = double(2)\n",
		"lib/math.es6":   "export function double(...n) { return n[0] * 2 }\n",
		"lib/broken.es6": "var = \n",
		"notes.txt":      "not a source",
	})
	cfg := testConfig(t)
	cfg.Build.Jobs = 2
	c := newCompiler(t, cfg)

	b, err := c.Build(context.Background(), []string{src})
	require.NoError(t, err)
	require.Len(t, b.Modules, 3)
	assert.Equal(t, "lib/broken", b.Modules[0].Name)
	assert.Equal(t, "lib/math", b.Modules[1].Name)
	assert.Equal(t, "main", b.Modules[2].Name)

	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "broken.es6")
	assert.Error(t, b.Module("lib/broken").Err)

	main := b.Module("main")
	require.NotNil(t, main)
	require.NoError(t, main.Err)
	assert.Equal(t, src, main.SourceDir)
	assert.Equal(t, []string{"lib/math"}, main.Deps)
	assert.Nil(t, b.Module("missing"))

	assert.Equal(t, []string{"lib/math", "main"}, b.Graph.Order("main"))
	assert.Empty(t, b.Graph.Missing())
}

func TestBuildNoRecurse(t *testing.T) {
	src := newProject(t, map[string]string{
		"top.es6":     "var a = 1\n",
		"sub/low.es6": "var b = 2\n",
	})
	cfg := testConfig(t)
	cfg.Build.Recurse = false
	b, err := newCompiler(t, cfg).Build(context.Background(), []string{src})
	require.NoError(t, err)
	require.Len(t, b.Modules, 1)
	assert.Equal(t, "top", b.Modules[0].Name)
}

func TestBuildDuplicateModule(t *testing.T) {
	src := newProject(t, map[string]string{
		"a.es6": "var x = 1\n",
		"a.js":  "var x = 2\n",
	})
	b, err := newCompiler(t, testConfig(t)).Build(context.Background(), []string{src})
	require.NoError(t, err)
	require.Len(t, b.Modules, 2)
	assert.NoError(t, b.Modules[0].Err)
	require.Error(t, b.Modules[1].Err)
	assert.Contains(t, b.Modules[1].Err.Error(), `module "a" is also provided by`)
}

func TestBuildMissingInput(t *testing.T) {
	_, err := newCompiler(t, testConfig(t)).Build(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestBuildCanceled(t *testing.T) {
	src := newProject(t, map[string]string{"a.es6": "var a\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCompiler(t, testConfig(t)).Build(ctx, []string{src})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSharedTemps(t *testing.T) {
	src := newProject(t, map[string]string{
		"a.es6": "var [x] = f()\n",
		"b.es6": "var [y] = g()\n",
	})
	cfg := testConfig(t)
	cfg.Build.SharedTemps = true
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()
	c := newCompiler(t, cfg)
	assert.Nil(t, c.Cache, "shared temps make output order dependent")

	b, err := c.Build(context.Background(), []string{src})
	require.NoError(t, err)
	require.NoError(t, b.Err())
	assert.Contains(t, b.Module("a").Code+b.Module("b").Code, "$$$1")
	assert.Contains(t, b.Module("a").Code+b.Module("b").Code, "$$$2")
}

func TestBuildUsesCache(t *testing.T) {
	src := newProject(t, map[string]string{"a.es6": "import b from './b'\nvar f = () => b\n"})
	cfg := testConfig(t)
	cfg.Build.SourceMaps = true
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()

	first, err := newCompiler(t, cfg).Build(context.Background(), []string{src})
	require.NoError(t, err)
	require.NoError(t, first.Err())
	assert.False(t, first.Module("a").Cached)

	second, err := newCompiler(t, cfg).Build(context.Background(), []string{src})
	require.NoError(t, err)
	a := second.Module("a")
	require.NoError(t, a.Err)
	assert.True(t, a.Cached)
	assert.Nil(t, a.Program)
	assert.Equal(t, first.Module("a").Code, a.Code)
	assert.Equal(t, []string{"b"}, a.Deps)
	require.NotNil(t, a.SourceMap)
	assert.Equal(t, first.Module("a").SourceMap.Mappings, a.SourceMap.Mappings)
}

func TestWrite(t *testing.T) {
	src := newProject(t, map[string]string{
		"main.es6":    "import m from './lib/m'\n",
		"lib/m.es6":   "export var v = 1\n",
		"lib/bad.es6": "var [ = 1\n",
	})
	cfg := testConfig(t)
	cfg.Build.SourceMaps = true
	c := newCompiler(t, cfg)
	b, err := c.Build(context.Background(), []string{src})
	require.NoError(t, err)

	written, err := c.Write(b)
	require.NoError(t, err)
	out := cfg.Build.Output
	assert.Equal(t, []string{
		filepath.Join(out, "lib", "m.js.map"),
		filepath.Join(out, "lib", "m.js"),
		filepath.Join(out, "main.js.map"),
		filepath.Join(out, "main.js"),
	}, written)

	code, err := os.ReadFile(filepath.Join(out, "main.js"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "var m = require('./lib/m');")
	assert.Contains(t, string(code), "//# sourceMappingURL=main.js.map")

	data, err := os.ReadFile(filepath.Join(out, "lib", "m.js.map"))
	require.NoError(t, err)
	sm, err := sourcemap.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "m.js", sm.File)
	assert.NoFileExists(t, filepath.Join(out, "lib", "bad.js"))
}

func TestWriteInPlace(t *testing.T) {
	root := newProject(t, map[string]string{
		"app/main.es6": "export var x = 1\n",
		"app/old.js":   "var stale = 1\n",
	})
	t.Chdir(root)

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	c := newCompiler(t, cfg)
	b, err := c.Build(context.Background(), []string{"app", filepath.Join("app", "old.js")})
	require.NoError(t, err)
	require.Len(t, b.Modules, 2)
	assert.Equal(t, "app/main", b.Modules[0].Name)
	assert.Equal(t, "app/old", b.Modules[1].Name)

	written, err := c.Write(b)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("app", "main.js")}, written, "a source is never overwritten by its own output")

	stale, err := os.ReadFile(filepath.Join("app", "old.js"))
	require.NoError(t, err)
	assert.Equal(t, "var stale = 1\n", string(stale))
}
