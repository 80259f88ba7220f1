// Package compiler drives the desugaring pass over whole projects: it finds
// sources, compiles them in parallel through parse, desugar and print, builds
// the dependency graph from the required specifiers and writes the outputs.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/parser"
	"github.com/rubiojr/party/printer"
	"github.com/rubiojr/party/resolver"
	"github.com/rubiojr/party/sourcemap"
)

// Version is mixed into cache keys so a new compiler never reuses output of
// an older one.
var Version = "dev"

// Compiler compiles sources according to a Config.
type Compiler struct {
	Config Config
	// Cache stores compiled modules across runs. Nil disables caching.
	Cache *Cache
}

// New creates a Compiler, opening the cache when the configuration enables
// it. A cache that cannot be opened is logged and disabled.
func New(cfg Config) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Compiler{Config: cfg}
	if cfg.Cache.Enabled && !cfg.Build.SharedTemps {
		cache, err := OpenCache(cfg.Cache.Dir)
		if err != nil {
			Logger().Warn("compile cache disabled", zap.Error(err))
		} else {
			c.Cache = cache
		}
	}
	return c, nil
}

// Module is the compilation record of one source file. It is filled in once
// by the compiler and not modified afterwards.
type Module struct {
	// Name is the canonical module name: the source path without its
	// extension, relative to the directory it was found in.
	Name       string
	SourcePath string
	SourceDir  string // directory argument the source came from, or ""

	// Requires lists the specifiers passed to require, in source order.
	Requires []string
	// Deps holds Requires resolved to canonical module names.
	Deps []string

	Program   *ast.Program // desugared tree, nil on cache hits
	Code      string
	SourceMap *sourcemap.Map
	Warnings  []*ast.Error
	Cached    bool

	// Err is the first failure of this module; later fields are unset.
	Err error
}

// ModuleName derives the canonical module name of a source file. dir is the
// directory argument the file was found under; it is stripped from the name
// unless the build compiles in place.
func ModuleName(sourcePath, dir string, inPlace bool) string {
	name := filepath.ToSlash(sourcePath)
	if dir != "" && !inPlace {
		if rel, err := filepath.Rel(dir, sourcePath); err == nil {
			name = filepath.ToSlash(rel)
		}
	}
	name = strings.TrimPrefix(path.Clean(name), "./")
	if ext := path.Ext(name); ext == ".js" || ext == ".es6" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// ParseFile parses one source file with the configured position tracking.
func (c *Compiler) ParseFile(path string, positions bool) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parser.Parse(path, src, parser.Options{Positions: positions})
}

// CompileSource compiles src as a single module. The module name is derived
// from path.
func (c *Compiler) CompileSource(src []byte, path string) (*Module, error) {
	return c.CompileModule(src, path, ModuleName(path, "", true))
}

// CompileModule compiles src as the module called name. Dependencies are
// resolved relative to name.
func (c *Compiler) CompileModule(src []byte, path, name string) (*Module, error) {
	m := &Module{Name: name, SourcePath: path}
	c.compile(m, src, nil)
	c.resolve(m)
	if m.Err != nil {
		return nil, m.Err
	}
	return m, nil
}

// compile fills m from src. Failures are stored in m.Err.
func (c *Compiler) compile(m *Module, src []byte, temps *ast.Temps) {
	log := Logger().With(zap.String("module", m.Name))
	cfg := c.Config.Build

	var key string
	if c.Cache != nil && temps == nil {
		key = cacheKey(src, m.SourcePath, cfg)
		entry, ok, err := c.Cache.get(key)
		if err != nil {
			log.Warn("cache read failed", zap.Error(err))
		}
		if ok {
			if entry.Map != nil {
				if m.SourceMap, err = sourcemap.Parse(entry.Map); err != nil {
					log.Warn("cached source map is unreadable", zap.Error(err))
				}
			}
			m.Code, m.Requires, m.Warnings, m.Cached = entry.Code, entry.Requires, entry.Warnings, true
			if err == nil {
				log.Debug("cache hit")
				return
			}
		}
	}

	prog, err := parser.Parse(m.SourcePath, src, parser.Options{Positions: cfg.Positions || cfg.SourceMaps})
	if err != nil {
		m.Err = err
		return
	}

	var res *ast.Result
	desugar := ast.Checked(
		ast.Desugaring(ast.Options{Temps: temps}, func(r *ast.Result) { res = r }),
		ast.CheckChain{ast.SubsetCheck()},
	)
	if _, err := desugar.Transform(prog); err != nil {
		m.Err = err
		return
	}
	m.Program, m.Requires, m.Warnings, m.Cached = res.Program, res.Requires, res.Warnings, false

	out, err := printer.Print(res.Program, printer.Options{
		SourceMap:     cfg.SourceMaps,
		File:          path.Base(m.Name) + ".js",
		SourceContent: string(src),
	})
	if err != nil {
		m.Err = fmt.Errorf("%s: printing: %w", m.SourcePath, err)
		return
	}
	m.Code, m.SourceMap = out.Code, out.Map
	for _, w := range m.Warnings {
		log.Debug("construct passed through", zap.String("pos", w.Pos.String()), zap.String("msg", w.Msg))
	}

	if key != "" {
		entry := &cacheEntry{Code: m.Code, Requires: m.Requires, Warnings: m.Warnings}
		if m.SourceMap != nil {
			if entry.Map, err = m.SourceMap.JSON(); err != nil {
				log.Warn("cache write skipped", zap.Error(err))
				return
			}
		}
		if err := c.Cache.put(key, entry); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}
}

// resolve turns the module's requires into canonical names under the
// configured escape policy.
func (c *Compiler) resolve(m *Module) {
	if m.Err != nil {
		return
	}
	r := &resolver.Resolver{
		Policy: c.Config.Resolve.Escape,
		OnEscape: func(e *resolver.EscapeError) {
			Logger().Warn("dependency escapes the project root",
				zap.String("module", e.Consumer), zap.String("require", e.Specifier), zap.String("resolved", e.Module))
		},
	}
	deps, err := r.ResolveAll(m.Name, m.Requires)
	if err != nil {
		m.Err = fmt.Errorf("%s: %w", m.SourcePath, err)
		return
	}
	m.Deps = deps
}

// Build is the result of compiling a set of sources.
type Build struct {
	Modules []*Module // sorted by name
	Graph   *Graph
}

// Module returns the module called name, or nil.
func (b *Build) Module(name string) *Module {
	i := sort.Search(len(b.Modules), func(i int) bool { return b.Modules[i].Name >= name })
	if i < len(b.Modules) && b.Modules[i].Name == name {
		return b.Modules[i]
	}
	return nil
}

// Err joins the errors of all failed modules.
func (b *Build) Err() error {
	var errs []error
	for _, m := range b.Modules {
		if m.Err != nil {
			errs = append(errs, m.Err)
		}
	}
	return errors.Join(errs...)
}

type source struct {
	path string
	dir  string
}

// Build compiles every source reachable from paths. Directories are scanned
// for the configured extensions; files are taken as given. Module failures
// are recorded on their Module and do not stop the build; the returned error
// reports problems with the inputs themselves or cancellation.
func (c *Compiler) Build(ctx context.Context, paths []string) (*Build, error) {
	sources, err := c.collect(paths)
	if err != nil {
		return nil, err
	}

	inPlace := c.Config.InPlace()
	modules := make([]*Module, len(sources))
	for i, s := range sources {
		modules[i] = &Module{Name: ModuleName(s.path, s.dir, inPlace), SourcePath: s.path, SourceDir: s.dir}
	}
	sort.SliceStable(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	for i := 1; i < len(modules); i++ {
		if modules[i].Name == modules[i-1].Name {
			modules[i].Err = fmt.Errorf("%s: module %q is also provided by %s", modules[i].SourcePath, modules[i].Name, modules[i-1].SourcePath)
		}
	}

	var temps *ast.Temps
	if c.Config.Build.SharedTemps {
		temps = &ast.Temps{}
	}

	jobs := c.Config.Build.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(modules))))
	for _, m := range modules {
		if m.Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			src, err := os.ReadFile(m.SourcePath)
			if err != nil {
				m.Err = fmt.Errorf("reading %s: %w", m.SourcePath, err)
				return nil
			}
			c.compile(m, src, temps)
			c.resolve(m)
			Logger().Debug("compiled module",
				zap.String("module", m.Name), zap.Bool("cached", m.Cached), zap.Strings("deps", m.Deps),
				zap.Duration("elapsed", time.Since(start)), zap.Error(m.Err))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.Cache != nil {
		if n, err := c.Cache.Prune(); err != nil {
			Logger().Warn("cache prune failed", zap.Error(err))
		} else if n > 0 {
			Logger().Debug("cache pruned", zap.Int("entries", n))
		}
	}

	return &Build{Modules: modules, Graph: NewGraph(modules)}, nil
}

// collect expands paths into the list of source files.
func (c *Compiler) collect(paths []string) ([]source, error) {
	exts := c.Config.SourceExtensions()
	isSource := func(name string) bool {
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				return true
			}
		}
		return false
	}

	var out []source
	seen := map[string]bool{}
	add := func(s source) {
		clean := filepath.Clean(s.path)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, source{path: clean, dir: s.dir})
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(source{path: p})
			continue
		}
		dir := filepath.Clean(p)
		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && !c.Config.Build.Recurse {
					return filepath.SkipDir
				}
				return nil
			}
			if isSource(d.Name()) {
				add(source{path: path, dir: dir})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
	}
	return out, nil
}
