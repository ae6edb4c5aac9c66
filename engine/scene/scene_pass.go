package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/outline_pass"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
)

// ScenePipelineKey is the pipeline that shades scene meshes.
const ScenePipelineKey = "scene"

var _ outline_pass.MeshSource = Scene(nil)

// scenePass shades every mesh of a scene into scene_color with the scene's key light. It
// always draws offscreen.
type scenePass struct {
	scene    Scene
	pipeline pipeline.Pipeline
}

var _ outline_pass.Pass = &scenePass{}

// NewScenePass creates the pass that renders the shaded scene the outline is drawn over.
//
// Parameters:
//   - s: the scene to draw
//
// Returns:
//   - outline_pass.Pass: the pass, ready for Init
func NewScenePass(s Scene) outline_pass.Pass {
	vs := shader.NewShader("scene_vertex", shader.ShaderTypeVertex, SceneVertexSource)
	fs := shader.NewShader("scene_fragment", shader.ShaderTypeFragment, SceneFragmentSource)
	return &scenePass{
		scene: s,
		pipeline: pipeline.NewPipeline(ScenePipelineKey, renderer.TargetSceneColor,
			pipeline.WithShaders(vs, fs),
			pipeline.WithDepth(renderer.TargetSceneDepth, true),
		),
	}
}

func (p *scenePass) Name() string {
	return "scene"
}

func (p *scenePass) Init(r outline_pass.PassRenderer) error {
	return r.RegisterPipelines(p.pipeline)
}

func (p *scenePass) SetSize(width, height int) {}

func (p *scenePass) Render(r outline_pass.PassRenderer) error {
	if err := r.BeginPass(renderer.PassDescriptor{
		Label: "Scene Pass",
		Color: renderer.TargetSceneColor,
		Depth: renderer.TargetSceneDepth,
	}); err != nil {
		return err
	}
	defer r.EndPass()

	cam := p.scene.CameraProvider()
	lit := p.scene.Light().BindGroupProvider()
	for _, m := range p.scene.Visible() {
		groups := []bind_group_provider.BindGroupProvider{cam, m.UniformProvider(), lit}
		if err := r.DrawCall(ScenePipelineKey, m.MeshProvider(), groups); err != nil {
			return fmt.Errorf("mesh %s: %w", m.Name(), err)
		}
	}
	return nil
}

func (p *scenePass) SetRenderToScreen(enabled bool) {}

func (p *scenePass) RenderToScreen() bool {
	return false
}

func (p *scenePass) Dispose() {}
