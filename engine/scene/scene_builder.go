package scene

import (
	"github.com/Carmen-Shannon/oxy-outline/engine/light"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCulling enables or disables frustum culling in Visible. Enabled by default.
func WithCulling(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.culling = enabled
	}
}

// WithLight sets the key light the scene pass shades with. Defaults to light.NewLight().
//
// Parameters:
//   - l: the light, nil keeps the default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		if l != nil {
			s.light = l
		}
	}
}

// WithLabelWorkers sets the number of worker goroutines that label meshes in parallel.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of label workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLabelWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.labelWorkers = max(n, 1)
	}
}

// WithMeshes adds initial meshes to the scene. They are labeled once the scene is built,
// in the order given; labeling errors are logged.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes ...model.Mesh) SceneBuilderOption {
	return func(s *scene) {
		s.initialMeshes = append(s.initialMeshes, meshes...)
	}
}
