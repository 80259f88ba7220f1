package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// OutputPath returns where the compiled code of m is written: the module
// name with a .js extension, under the output directory or, for in-place
// builds, relative to the working directory.
func (c *Compiler) OutputPath(m *Module) string {
	name := filepath.FromSlash(m.Name) + ".js"
	if c.Config.InPlace() {
		return name
	}
	return filepath.Join(c.Config.Build.Output, name)
}

// Write stores the compiled modules of b and returns the paths written, in
// module order. Failed modules are skipped. A module whose destination is its
// own source is not written. Source maps, when present, are written next to
// the code before it.
func (c *Compiler) Write(b *Build) ([]string, error) {
	var written []string
	for _, m := range b.Modules {
		if m.Err != nil {
			continue
		}
		dest := c.OutputPath(m)
		if same, err := samePath(dest, m.SourcePath); err != nil {
			return written, err
		} else if same {
			Logger().Warn("output would overwrite its source, skipping",
				zap.String("module", m.Name), zap.String("path", dest))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return written, fmt.Errorf("creating output directory for %s: %w", m.Name, err)
		}
		if m.SourceMap != nil {
			data, err := m.SourceMap.JSON()
			if err != nil {
				return written, fmt.Errorf("encoding source map of %s: %w", m.Name, err)
			}
			if err := os.WriteFile(dest+".map", data, 0o644); err != nil {
				return written, err
			}
			written = append(written, dest+".map")
		}
		code := m.Code
		if m.SourceMap != nil {
			code += "//# sourceMappingURL=" + filepath.Base(dest) + ".map\n"
		}
		if err := os.WriteFile(dest, []byte(code), 0o644); err != nil {
			return written, err
		}
		written = append(written, dest)
		Logger().Debug("wrote module", zap.String("module", m.Name), zap.String("path", dest))
	}
	return written, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
