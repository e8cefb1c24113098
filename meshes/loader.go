// Package meshes resolves mesh resource locators and loads them as triangle meshes.
package meshes

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/spatialmath"
	"go.viam.com/pourdemo/utils"
)

// ErrUnresolvable is returned when a locator cannot be mapped to a file.
var ErrUnresolvable = errors.New("unresolvable mesh resource")

const (
	packageScheme = "package"
	fileScheme    = "file"
)

// Loader turns a resource locator into a mesh.
type Loader interface {
	Load(ctx context.Context, locator string) (*spatialmath.Mesh, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, locator string) (*spatialmath.Mesh, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, locator string) (*spatialmath.Mesh, error) {
	return f(ctx, locator)
}

// FileLoader loads STL and PLY meshes from the local filesystem. Locators may be
// package://<package>/<path>, file://<absolute path> or a plain path. Loaded meshes are cached
// by resolved path.
type FileLoader struct {
	packages PackageResolver
	logger   logging.Logger

	mu    sync.Mutex
	cache map[string]*spatialmath.Mesh
}

// NewFileLoader returns a FileLoader resolving package:// locators through packages, which may be nil.
func NewFileLoader(packages PackageResolver, logger logging.Logger) *FileLoader {
	return &FileLoader{
		packages: packages,
		logger:   logger,
		cache:    map[string]*spatialmath.Mesh{},
	}
}

// Resolve maps a locator to a filesystem path without reading it.
func (l *FileLoader) Resolve(locator string) (string, error) {
	if locator == "" {
		return "", errors.Wrap(ErrUnresolvable, "empty locator")
	}
	if !strings.Contains(locator, "://") {
		return filepath.Clean(locator), nil
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", errors.Wrapf(ErrUnresolvable, "%q: %v", locator, err)
	}
	switch u.Scheme {
	case fileScheme:
		if u.Host != "" && u.Host != "localhost" {
			return "", errors.Wrapf(ErrUnresolvable, "%q: remote file host %q", locator, u.Host)
		}
		return filepath.Clean(u.Path), nil
	case packageScheme:
		if l.packages == nil {
			return "", errors.Wrapf(ErrUnresolvable, "%q: no packages configured", locator)
		}
		root, err := l.packages.PackagePath(u.Host)
		if err != nil {
			return "", errors.Wrapf(ErrUnresolvable, "%q: %v", locator, err)
		}
		rel := strings.TrimPrefix(u.Path, "/")
		if rel == "" {
			return "", errors.Wrapf(ErrUnresolvable, "%q: no file inside package", locator)
		}
		path, err := utils.SafeJoinDir(root, rel)
		if err != nil {
			return "", errors.Wrapf(ErrUnresolvable, "%q: %v", locator, err)
		}
		return path, nil
	default:
		return "", errors.Wrapf(ErrUnresolvable, "%q: unsupported scheme %q", locator, u.Scheme)
	}
}

// Load resolves the locator and reads the mesh. The returned mesh is labeled with its file name.
func (l *FileLoader) Load(ctx context.Context, locator string) (*spatialmath.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.Resolve(locator)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	cached, ok := l.cache[path]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnresolvable, locator, err)
	}
	mesh, err := spatialmath.NewMeshFromFile(path, filepath.Base(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading mesh resource %q", locator)
	}
	minPt, maxPt := mesh.BoundingBox()
	l.logger.CDebugw(ctx, "loaded mesh", "locator", locator, "path", path,
		"triangles", len(mesh.Triangles()), "min", minPt, "max", maxPt)

	l.mu.Lock()
	l.cache[path] = mesh
	l.mu.Unlock()
	return mesh, nil
}
