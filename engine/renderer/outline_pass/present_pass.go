package outline_pass

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/engine/outline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
)

// PresentPipelineKey copies the output target to the swapchain.
const PresentPipelineKey = "present"

// presentPass copies the output target to the swapchain. It always draws to the screen.
type presentPass struct {
	mu *sync.Mutex

	fragmentShader   shader.Shader
	pipeline         pipeline.Pipeline
	source           bind_group_provider.BindGroupProvider
	targetGeneration uint64
}

var _ Pass = &presentPass{}

// NewPresentPass creates the pass that copies the composited output to the swapchain.
// Use it when the CompositePass does not render to screen.
func NewPresentPass() Pass {
	vs := shader.NewShader("present_vertex", shader.ShaderTypeVertex, outline.FullscreenVertexSource)
	fs := shader.NewShader("present_fragment", shader.ShaderTypeFragment, outline.PresentFragmentSource)
	return &presentPass{
		mu:             &sync.Mutex{},
		fragmentShader: fs,
		pipeline: pipeline.NewPipeline(PresentPipelineKey, renderer.TargetSwapchain,
			pipeline.WithShaders(vs, fs),
		),
		source: bind_group_provider.NewBindGroupProvider("present_source"),
	}
}

func (p *presentPass) Name() string {
	return "present"
}

func (p *presentPass) Init(r PassRenderer) error {
	return r.RegisterPipelines(p.pipeline)
}

func (p *presentPass) SetSize(width, height int) {}

func (p *presentPass) Render(r PassRenderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen := r.TargetGeneration(); gen != p.targetGeneration {
		if err := bindTargets(r, p.source, p.fragmentShader, 0); err != nil {
			return err
		}
		p.targetGeneration = gen
	}
	desc := renderer.PassDescriptor{Label: "Present Pass", Color: renderer.TargetSwapchain}
	return encode(r, desc, func() error {
		return r.DrawFullscreen(PresentPipelineKey, []bind_group_provider.BindGroupProvider{p.source})
	})
}

func (p *presentPass) SetRenderToScreen(enabled bool) {}

func (p *presentPass) RenderToScreen() bool {
	return true
}

func (p *presentPass) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source.Release()
	p.targetGeneration = 0
}
