package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/compiler"
	"github.com/rubiojr/party/interp"
	"github.com/rubiojr/party/resolver"
)

// sourceLoader compiles modules on demand for the interpreter. Module names
// are resolved against root, trying each source extension in turn.
type sourceLoader struct {
	c    *compiler.Compiler
	root string
	exts []string
	// report receives the warnings of every compiled module.
	report func(*compiler.Module)
}

func (l *sourceLoader) Load(module string) (*ast.Program, error) {
	base := filepath.Join(l.root, filepath.FromSlash(module))
	for _, ext := range l.exts {
		path := base + ext
		if _, err := os.Stat(path); err == nil {
			return l.compile(path, module)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("cannot find module %q under %s", module, l.root)
}

func (l *sourceLoader) compile(path, module string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := l.c.CompileModule(src, path, module)
	if err != nil {
		return nil, err
	}
	if l.report != nil {
		l.report(m)
	}
	compiler.Logger().Debug("loaded module", zap.String("path", path), zap.Strings("requires", m.Requires))
	return m.Program, nil
}

// run evaluates file as the entry module. Required modules are looked up in
// the file's directory. The script sees its arguments as process.argv.
func (a *app) run(cfg compiler.Config, file string, args []string) error {
	// The interpreter walks the desugared trees, which cache hits lack.
	cfg.Cache.Enabled = false
	cfg.Build.Positions = true
	c, err := compiler.New(cfg)
	if err != nil {
		return err
	}
	loader := &sourceLoader{
		c:    c,
		root: filepath.Dir(file),
		exts: cfg.Build.Extensions,
		report: func(m *compiler.Module) {
			for _, w := range m.Warnings {
				a.diag().warn(w)
			}
		},
	}
	name := compiler.ModuleName(filepath.Base(file), "", true)
	prog, err := loader.compile(file, name)
	if err != nil {
		return err
	}

	rt := interp.New(loader)
	rt.Stdout = a.stdout
	rt.Resolver = &resolver.Resolver{
		Policy: cfg.Resolve.Escape,
		OnEscape: func(e *resolver.EscapeError) {
			compiler.Logger().Warn("require escapes the project root",
				zap.String("module", e.Consumer), zap.String("require", e.Specifier))
		},
	}
	argv := []interp.Value{"party", file}
	for _, arg := range args {
		argv = append(argv, arg)
	}
	process := rt.NewObject()
	process.Set("argv", rt.NewArray(argv...))
	rt.Define("process", process)

	_, err = rt.Run(name, prog)
	return err
}
