package outline_pass

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-outline/engine/outline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
)

const (
	// CompositePipelineKey draws the composite into the output target.
	CompositePipelineKey = "outline_composite"

	// CompositeScreenPipelineKey draws the composite straight into the swapchain.
	CompositeScreenPipelineKey = "outline_composite_screen"
)

const (
	compositeParamsGroup  = 0
	compositeTargetsGroup = 1
)

// CompositePass compares every label texel with its neighbors and writes the outline
// color over the pixels the scene pass covered. It reads scene_color and label and writes
// either the output target or, with RenderToScreen, the swapchain.
type CompositePass interface {
	Pass

	// Config returns the outline settings read every frame.
	Config() outline.Config
}

type compositePass struct {
	mu *sync.Mutex

	config         outline.Config
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	pipelines      []pipeline.Pipeline

	params  bind_group_provider.BindGroupProvider
	targets bind_group_provider.BindGroupProvider

	width, height    int
	renderToScreen   bool
	targetGeneration uint64
	started          time.Time
	initialized      bool
}

var _ CompositePass = &compositePass{}

// NewCompositePass creates the outline composite pass.
//
// Parameters:
//   - config: the outline settings, nil for outline.NewConfig defaults
//
// Returns:
//   - CompositePass: the pass, ready for Init
func NewCompositePass(config outline.Config) CompositePass {
	if config == nil {
		config = outline.NewConfig()
	}
	vs := shader.NewShader("fullscreen_vertex", shader.ShaderTypeVertex, outline.FullscreenVertexSource)
	fs := shader.NewShader("composite_fragment", shader.ShaderTypeFragment, outline.CompositeFragmentSource)

	newPipeline := func(key, target string) pipeline.Pipeline {
		return pipeline.NewPipeline(key, target,
			pipeline.WithShaders(vs, fs),
		)
	}

	return &compositePass{
		mu:             &sync.Mutex{},
		config:         config,
		vertexShader:   vs,
		fragmentShader: fs,
		pipelines: []pipeline.Pipeline{
			newPipeline(CompositePipelineKey, renderer.TargetOutput),
			newPipeline(CompositeScreenPipelineKey, renderer.TargetSwapchain),
		},
		params:  bind_group_provider.NewBindGroupProvider("outline_params"),
		targets: bind_group_provider.NewBindGroupProvider("outline_targets"),
	}
}

func (p *compositePass) Name() string {
	return "outline_composite"
}

func (p *compositePass) Config() outline.Config {
	return p.config
}

func (p *compositePass) Init(r PassRenderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := r.RegisterPipelines(p.pipelines...); err != nil {
		return err
	}
	desc, ok := p.fragmentShader.BindGroupLayoutDescriptors()[compositeParamsGroup]
	if !ok {
		return fmt.Errorf("composite shader declares no bind group %d", compositeParamsGroup)
	}
	if err := r.InitBindGroup(p.params, desc, nil, nil); err != nil {
		return fmt.Errorf("outline params: %w", err)
	}
	if p.width == 0 || p.height == 0 {
		p.width, p.height = r.Size()
	}
	p.started = time.Now()
	p.initialized = true
	return nil
}

func (p *compositePass) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

func (p *compositePass) Render(r PassRenderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// target views change on every resize
	if gen := r.TargetGeneration(); gen != p.targetGeneration {
		if err := bindTargets(r, p.targets, p.fragmentShader, compositeTargetsGroup); err != nil {
			return err
		}
		p.targetGeneration = gen
	}

	params := p.config.Params(p.width, p.height, float32(time.Since(p.started).Seconds()))
	r.WriteBuffers([]bind_group_provider.BufferWrite{bind_group_provider.UniformWrite(p.params, &params)})

	desc := renderer.PassDescriptor{Label: "Outline Composite Pass", Color: renderer.TargetOutput}
	key := CompositePipelineKey
	if p.renderToScreen {
		desc.Color, key = renderer.TargetSwapchain, CompositeScreenPipelineKey
	}
	return encode(r, desc, func() error {
		return r.DrawFullscreen(key, []bind_group_provider.BindGroupProvider{p.params, p.targets})
	})
}

func (p *compositePass) SetRenderToScreen(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderToScreen = enabled
}

func (p *compositePass) RenderToScreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderToScreen
}

func (p *compositePass) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Release()
	p.targets.Release()
	p.targetGeneration = 0
	p.initialized = false
}
