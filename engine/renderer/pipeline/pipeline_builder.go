package pipeline

import (
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShaders sets both shader stages.
//
// Parameters:
//   - vertex: the processed vertex shader
//   - fragment: the processed fragment shader
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithShaders(vertex, fragment shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vertex
		p.fragmentShader = fragment
	}
}

// WithDepth attaches a depth target. Fragments are depth tested with "less" and write depth
// when write is true.
//
// Parameters:
//   - key: the renderer depth target key
//   - write: whether fragments write depth
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithDepth(key string, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTarget = key
		p.depthWrite = write
	}
}

// WithAlphaBlend blends fragments over the target with AlphaBlend.
func WithAlphaBlend() PipelineBuilderOption {
	return func(p *pipeline) {
		b := AlphaBlend
		p.blend = &b
	}
}
