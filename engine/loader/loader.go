package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-skin/common"
	"github.com/Carmen-Shannon/oxy-skin/engine/model"
	"github.com/charmbracelet/log"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// ErrUnsupportedFormat is returned for files no backend can read.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu     *sync.RWMutex
	logger *log.Logger

	modelCache   map[string]model.Model
	modelOptions []model.ModelBuilderOption

	backend loaderBackend
}

// Loader imports animated rigs from files and caches the resulting models.
// Every entity sharing a file shares one immutable Model.
type Loader interface {
	// Load imports a rig file and caches the result by path.
	// If the model is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the model file (.gltf or .glb)
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadReader imports a rig from a self-contained stream and caches it by name.
	//
	// Parameters:
	//   - name: the cache key and model name
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// Importer returns a model.Importer that reads the file at path through this loader's backend
	// without touching the cache.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Importer: the importer
	Importer(path string) model.Importer

	// Get returns a cached model, or nil.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Evict drops a model from the cache.
	//
	// Parameters:
	//   - name: the cache key
	Evict(name string)

	// Models returns a copy of the cache.
	//
	// Returns:
	//   - map[string]model.Model: the cached models by key
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a Loader for the given backend.
//
// Parameters:
//   - backendType: the file format backend
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         &sync.RWMutex{},
		modelCache: make(map[string]model.Model),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = gltfLoaderBackend{}
	}

	for _, option := range options {
		option(l)
	}
	if l.logger == nil {
		l.logger = common.NewLogger("loader")
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}
	if err := l.checkFormat(path); err != nil {
		return nil, err
	}

	m, err := model.Load(l.Importer(path), l.modelOptions...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return l.store(path, m), nil
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, ErrUnsupportedFormat
	}

	imported, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	m, err := model.FromImported(imported, l.modelOptions...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return l.store(name, m), nil
}

// store caches m unless another goroutine cached the same key first, and returns the winner.
func (l *loader) store(key string, m model.Model) model.Model {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.modelCache[key]; ok {
		return existing
	}
	l.modelCache[key] = m
	l.logger.Debug("model cached", "key", key, "nodes", m.NodeCount(), "bones", m.BoneCount(), "clips", m.AnimationCount())
	return m
}

func (l *loader) Importer(path string) model.Importer {
	return importerFunc(func() (*model.ImportedModel, error) {
		if l.backend == nil {
			return nil, ErrUnsupportedFormat
		}
		return l.backend.Load(path)
	})
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.modelCache, name)
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) checkFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case l.backend == nil:
		return fmt.Errorf("%w: no backend", ErrUnsupportedFormat)
	case ext == ".gltf" || ext == ".glb":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// importerFunc adapts a function to model.Importer.
type importerFunc func() (*model.ImportedModel, error)

func (f importerFunc) Import() (*model.ImportedModel, error) { return f() }

// GLTFFile returns a model.Importer for a .gltf or .glb file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - model.Importer: the importer
func GLTFFile(path string) model.Importer {
	return importerFunc(func() (*model.ImportedModel, error) {
		return gltfLoaderBackend{}.Load(path)
	})
}
