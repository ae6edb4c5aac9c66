package scene

import _ "embed"

var (
	//go:embed assets/scene_vertex.wgsl
	SceneVertexSource string

	//go:embed assets/scene_fragment.wgsl
	SceneFragmentSource string
)
