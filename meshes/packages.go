package meshes

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PackageResolver maps a package name to the directory holding its files.
type PackageResolver interface {
	PackagePath(name string) (string, error)
}

// PackageMap resolves packages from an explicit name to directory map.
type PackageMap map[string]string

// PackagePath returns the directory configured for name.
func (m PackageMap) PackagePath(name string) (string, error) {
	dir, ok := m[name]
	if !ok {
		return "", errors.Errorf("unknown package %q", name)
	}
	return dir, nil
}

// SearchPath resolves a package to the first <root>/<name> directory that exists, like a
// colon separated ROS_PACKAGE_PATH.
type SearchPath []string

// NewSearchPath splits a list separated by the OS path list separator, dropping empty entries.
func NewSearchPath(list string) SearchPath {
	return lo.Compact(filepath.SplitList(list))
}

// PackagePath returns the first existing package directory.
func (s SearchPath) PackagePath(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty package name")
	}
	for _, root := range s {
		dir := filepath.Join(root, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", errors.Errorf("package %q not found in %v", name, []string(s))
}

// Resolvers tries each resolver in order.
type Resolvers []PackageResolver

// PackagePath returns the first successful resolution.
func (r Resolvers) PackagePath(name string) (string, error) {
	var lastErr error = errors.Errorf("unknown package %q", name)
	for _, resolver := range r {
		dir, err := resolver.PackagePath(name)
		if err == nil {
			return dir, nil
		}
		lastErr = err
	}
	return "", lastErr
}
