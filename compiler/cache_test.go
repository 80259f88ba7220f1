package compiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"modernc.org/token"

	"github.com/rubiojr/party/ast"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	key := cacheKey([]byte("var a = 1"), "a.es6", BuildConfig{})
	_, ok, err := c.get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	warn := &ast.Error{Kind: ast.ErrUnsupported, Node: ast.KindClassDecl, Pos: token.Position{Filename: "a.es6", Line: 2, Column: 1}, Msg: "class"}
	require.NoError(t, c.put(key, &cacheEntry{Code: "var a = 1;\n", Requires: []string{"./b"}, Warnings: []*ast.Error{warn}}))

	got, ok, err := c.get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "var a = 1;\n", got.Code)
	assert.Equal(t, []string{"./b"}, got.Requires)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, *warn, *got.Warnings[0])
}

func TestCacheKey(t *testing.T) {
	base := cacheKey([]byte("x"), "a.es6", BuildConfig{})
	assert.Equal(t, base, cacheKey([]byte("x"), "a.es6", BuildConfig{Jobs: 8}), "jobs do not change the output")
	assert.NotEqual(t, base, cacheKey([]byte("y"), "a.es6", BuildConfig{}))
	assert.NotEqual(t, base, cacheKey([]byte("x"), "b.es6", BuildConfig{}))
	assert.NotEqual(t, base, cacheKey([]byte("x"), "a.es6", BuildConfig{SourceMaps: true}))
	assert.NotEqual(t, base, cacheKey([]byte("x"), "a.es6", BuildConfig{Positions: true}))
}

func TestCacheSchemaMismatchIsMiss(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	key := cacheKey([]byte("x"), "x.es6", BuildConfig{})

	data, err := msgpack.Marshal(&cacheEntry{Schema: cacheSchema + 1, Code: "stale"})
	require.NoError(t, err)
	writeFile(t, c.pathFor(key), string(data))

	_, ok, err := c.get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheCorruptEntry(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)
	key := cacheKey([]byte("x"), "x.es6", BuildConfig{})
	writeFile(t, c.pathFor(key), "\xc1 not msgpack")

	_, ok, err := c.get(key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCachePruneEvictsOldest(t *testing.T) {
	c, err := OpenCache(t.TempDir())
	require.NoError(t, err)

	keys := []string{
		cacheKey([]byte("1"), "a", BuildConfig{}),
		cacheKey([]byte("2"), "a", BuildConfig{}),
		cacheKey([]byte("3"), "a", BuildConfig{}),
	}
	old := time.Now().Add(-time.Hour)
	for i, k := range keys {
		require.NoError(t, c.put(k, &cacheEntry{Code: "code"}))
		stamp := old.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(c.pathFor(k), stamp, stamp))
	}
	info, err := os.Stat(c.pathFor(keys[0]))
	require.NoError(t, err)

	c.MaxBytes = 2 * info.Size()
	n, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, c.pathFor(keys[0]))
	assert.FileExists(t, c.pathFor(keys[1]))
	assert.FileExists(t, c.pathFor(keys[2]))
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(dir)
	require.NoError(t, err)
	key := cacheKey([]byte("x"), "x", BuildConfig{})
	require.NoError(t, c.put(key, &cacheEntry{Code: "x"}))

	require.NoError(t, c.Clear())
	assert.NoDirExists(t, filepath.Join(dir, "mods"))
	_, ok, err := c.get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	_, ok, err := c.get("k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.put("k", &cacheEntry{}))
	n, err := c.Prune()
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Clear())
}
