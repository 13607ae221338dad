// Package model finds and loads the model sources of a project: operator
// logs (*.brep) and extrusion profiles (*.yaml).
package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/profile"
)

const (
	ExtLog     = ".brep"
	ExtProfile = ".yaml"
)

var (
	ErrUnknownType   = errors.New("not a model file")
	ErrDuplicateName = errors.New("models share a name")
)

// IsModel reports whether path names a model source.
func IsModel(path string) bool {
	switch filepath.Ext(path) {
	case ExtLog, ExtProfile:
		return true
	}
	return false
}

// Find returns every model below dir in lexical order. A missing directory
// holds no models.
func Find(dir string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsModel(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return matches, nil
}

// Expand resolves command-line arguments into model files. Directories are
// searched recursively; files are taken as they are.
func Expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := Find(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// Name is the slash-separated path of a model relative to dir, without
// its extension.
func Name(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
}

// CheckNames reports the first pair of paths that map to the same Name
// under dir, such as foo.brep next to foo.yaml. Their build outputs would
// overwrite each other.
func CheckNames(dir string, paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := Name(dir, path)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s: %w %q", prev, path, ErrDuplicateName, name)
		}
		seen[name] = path
	}
	return nil
}

// Load returns the operator log of a model, compiling profiles on the way.
func Load(path string) (*oplog.Log, error) {
	switch filepath.Ext(path) {
	case ExtLog:
		return oplog.LoadFile(path)
	case ExtProfile:
		p, err := profile.Load(path)
		if err != nil {
			return nil, err
		}
		l, err := p.Compile()
		if err != nil {
			return nil, fmt.Errorf("compiling profile %s: %w", path, err)
		}
		return l, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownType)
}
