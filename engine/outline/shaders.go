package outline

import _ "embed"

// Shader payloads of the outline effect. They carry @oxy annotations and are run through
// the shader pre-processor before reaching the GPU.
var (
	//go:embed assets/surface_id_vertex.wgsl
	SurfaceIdVertexSource string

	//go:embed assets/surface_id_fragment.wgsl
	SurfaceIdFragmentSource string

	//go:embed assets/fullscreen_vertex.wgsl
	FullscreenVertexSource string

	//go:embed assets/composite_fragment.wgsl
	CompositeFragmentSource string

	//go:embed assets/present_fragment.wgsl
	PresentFragmentSource string
)
