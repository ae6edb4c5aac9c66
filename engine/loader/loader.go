package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string][]model.Mesh

	backend     loaderBackend
	meshOptions []model.MeshBuilderOption

	workers int
	pool    worker.DynamicWorkerPool
}

// Loader defines the public-facing interface for loading and caching model files as
// engine meshes. Meshes come back unlabeled; labeling happens when they are added to a
// scene.
type Loader interface {
	// Load imports a model file and caches its meshes by path.
	// If the path is already cached, the cached meshes are returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - []model.Mesh: one mesh per triangle primitive instance
	//   - error: error if loading fails
	Load(path string) ([]model.Mesh, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - []model.Mesh: one mesh per triangle primitive instance
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) ([]model.Mesh, error)

	// Get retrieves cached meshes by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - []model.Mesh: the cached meshes or nil
	Get(name string) []model.Mesh

	// Models returns a copy of the cache.
	//
	// Returns:
	//   - map[string][]model.Mesh: all cached meshes keyed by name
	Models() map[string][]model.Mesh
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		meshCache: make(map[string][]model.Mesh),
		workers:   runtime.NumCPU(),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) ([]model.Mesh, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, imported), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) ([]model.Mesh, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("no loader backend configured")
	}

	imported, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, imported), nil
}

func (l *loader) Get(name string) []model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Models() map[string][]model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string][]model.Mesh, len(l.meshCache))
	for k, v := range l.meshCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects a loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l.backend == nil || !slices.Contains(l.backend.Extensions(), ext) {
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}
	return l.backend, nil
}

// store builds engine meshes from imported data on the worker pool and caches them.
// A concurrent load of the same key keeps whichever result was stored first.
func (l *loader) store(key string, imported *model.ImportedModel) []model.Mesh {
	meshes := l.buildMeshes(imported)

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.meshCache[key]; ok {
		for _, m := range meshes {
			m.Release()
		}
		return cached
	}
	l.meshCache[key] = meshes

	common.Logger().Info("model loaded", "name", imported.Name, "key", key, "meshes", len(meshes))
	return meshes
}

// buildMeshes converts ImportedMeshes to Meshes in parallel. Normal generation and
// bounds computation dominate the cost for large primitives.
func (l *loader) buildMeshes(imported *model.ImportedModel) []model.Mesh {
	meshes := make([]model.Mesh, len(imported.Meshes))
	var wg sync.WaitGroup
	for i, im := range imported.Meshes {
		wg.Add(1)
		idx := i
		opts := append(slices.Clone(l.meshOptions), model.WithImportedMesh(im))
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				meshes[idx] = model.NewMesh(opts...)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return meshes
}
