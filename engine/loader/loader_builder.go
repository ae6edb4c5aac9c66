package loader

import (
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of workers that build meshes from imported data.
// Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithMeshOptions adds options applied to every mesh before the imported data, such as
// a default base color for primitives without a material.
func WithMeshOptions(options ...model.MeshBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		l.meshOptions = append(l.meshOptions, options...)
	}
}

// WithModel is an option builder that pre-populates the cache.
//
// Parameters:
//   - key: the cache key for the meshes
//   - meshes: the meshes to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, meshes []model.Mesh) LoaderBuilderOption {
	return func(l *loader) {
		l.meshCache[key] = meshes
	}
}
