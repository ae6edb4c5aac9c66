package outline_pass

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/engine/outline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
)

// SurfaceIdPipelineKey is the pipeline the SurfaceIdPass draws every mesh with.
const SurfaceIdPipelineKey = "surface_id"

// surfaceIdParamsGroup is the bind group of the SurfaceIdParams uniform.
const surfaceIdParamsGroup = 2

// SurfaceIdPass rasterizes the normalized surface label of every mesh into the label
// target. The scene's own pipeline is never touched: the pass draws the same mesh
// buffers through a separate override pipeline.
type SurfaceIdPass interface {
	Pass

	// MaxLabel returns the normalization denominator uploaded by the last Render.
	MaxLabel() uint32
}

type surfaceIdPass struct {
	mu *sync.Mutex

	source         MeshSource
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	pipeline       pipeline.Pipeline
	params         bind_group_provider.BindGroupProvider
	maxLabel       uint32
	initialized    bool
}

var _ SurfaceIdPass = &surfaceIdPass{}

// NewSurfaceIdPass creates the label pass for the meshes of source.
//
// Parameters:
//   - source: the meshes, camera and label count to draw
//
// Returns:
//   - SurfaceIdPass: the pass, ready for Init
func NewSurfaceIdPass(source MeshSource) SurfaceIdPass {
	vs := shader.NewShader("surface_id_vertex", shader.ShaderTypeVertex, outline.SurfaceIdVertexSource)
	fs := shader.NewShader("surface_id_fragment", shader.ShaderTypeFragment, outline.SurfaceIdFragmentSource)
	return &surfaceIdPass{
		mu:             &sync.Mutex{},
		source:         source,
		vertexShader:   vs,
		fragmentShader: fs,
		pipeline: pipeline.NewPipeline(SurfaceIdPipelineKey, renderer.TargetLabel,
			pipeline.WithShaders(vs, fs),
			pipeline.WithDepth(renderer.TargetLabelDepth, true),
		),
		params: bind_group_provider.NewBindGroupProvider("surface_id_params"),
	}
}

func (p *surfaceIdPass) Name() string {
	return "surface_id"
}

func (p *surfaceIdPass) Init(r PassRenderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := r.RegisterPipelines(p.pipeline); err != nil {
		return err
	}
	desc, ok := p.fragmentShader.BindGroupLayoutDescriptors()[surfaceIdParamsGroup]
	if !ok {
		return fmt.Errorf("surface id shader declares no bind group %d", surfaceIdParamsGroup)
	}
	if err := r.InitBindGroup(p.params, desc, nil, nil); err != nil {
		return fmt.Errorf("surface id params: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *surfaceIdPass) SetSize(width, height int) {}

func (p *surfaceIdPass) Render(r PassRenderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.maxLabel = max(p.source.MaxLabel(), 1)
	params := outline.NewGPUSurfaceIdParams(p.maxLabel)
	r.WriteBuffers([]bind_group_provider.BufferWrite{bind_group_provider.UniformWrite(p.params, &params)})

	desc := renderer.PassDescriptor{Label: "Surface Id Pass", Color: renderer.TargetLabel, Depth: renderer.TargetLabelDepth}
	return encode(r, desc, func() error {
		cam := p.source.CameraProvider()
		for _, m := range p.source.Visible() {
			groups := []bind_group_provider.BindGroupProvider{cam, m.UniformProvider(), p.params}
			if err := r.DrawCall(SurfaceIdPipelineKey, m.MeshProvider(), groups); err != nil {
				return fmt.Errorf("mesh %s: %w", m.Name(), err)
			}
		}
		return nil
	})
}

func (p *surfaceIdPass) SetRenderToScreen(enabled bool) {}

func (p *surfaceIdPass) RenderToScreen() bool {
	return false
}

func (p *surfaceIdPass) MaxLabel() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxLabel
}

func (p *surfaceIdPass) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Release()
	p.initialized = false
}
