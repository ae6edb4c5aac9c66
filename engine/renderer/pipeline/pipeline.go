package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBlendUnsupported is returned by Validate when a blending pipeline draws into a 32-bit
// float target. WebGPU cannot blend those formats, and labels must be written verbatim.
var ErrBlendUnsupported = errors.New("pipeline: blending into a non-blendable target")

// AlphaBlend is the standard "over" blend used by WithAlphaBlend.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

type pipeline struct {
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	// colorTarget and depthTarget name the renderer targets the pipeline draws into. Their
	// formats and sample counts fix the attachment state. An empty depthTarget builds a
	// pipeline without depth, which is what every full-screen pass uses.
	colorTarget string
	depthTarget string
	depthWrite  bool

	blend *wgpu.BlendState
}

// Pipeline is the configuration of one render pipeline: its shaders, the targets it draws
// into and the little fixed-function state the outline passes vary. The renderer creates the
// GPU object on registration.
type Pipeline interface {
	// PipelineKey returns the unique key passes use to look the pipeline up.
	PipelineKey() string

	// Shader retrieves the shader of the given stage, or nil when unset.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the stage's shader, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the GPU pipeline, nil until the renderer registers it.
	Pipeline() *wgpu.RenderPipeline

	// ColorTarget returns the key of the render target this pipeline draws into.
	ColorTarget() string

	// DepthTarget returns the key of the depth target, or "" for a pipeline without depth.
	DepthTarget() string

	// DepthWriteEnabled reports whether fragments write depth. Only meaningful with a depth target.
	DepthWriteEnabled() bool

	// Blend returns the blend state, or nil when fragments replace the target.
	Blend() *wgpu.BlendState

	// Validate checks the configuration against the format of the color target.
	//
	// Parameters:
	//   - colorFormat: format of the texture named by ColorTarget
	//
	// Returns:
	//   - error: ErrBlendUnsupported, or an error naming a missing shader stage
	Validate(colorFormat wgpu.TextureFormat) error

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline drawing into colorTarget. Without options it has no depth and
// no blending, which suits full-screen passes. Faces are never culled: labels must cover both
// sides of open meshes.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - colorTarget: the key of the render target the pipeline draws into
//   - opts: options applied in order
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(pipelineKey, colorTarget string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		colorTarget: colorTarget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) ColorTarget() string {
	return p.colorTarget
}

func (p *pipeline) DepthTarget() string {
	return p.depthTarget
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWrite
}

func (p *pipeline) Blend() *wgpu.BlendState {
	return p.blend
}

func (p *pipeline) Validate(colorFormat wgpu.TextureFormat) error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return fmt.Errorf("pipeline %s: both vertex and fragment shaders must be set", p.pipelineKey)
	}
	if p.blend != nil && !blendable(colorFormat) {
		return fmt.Errorf("%w: %s draws into %s", ErrBlendUnsupported, p.pipelineKey, p.colorTarget)
	}
	return nil
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// blendable reports whether WebGPU allows blending into format.
func blendable(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatR32Float, wgpu.TextureFormatRG32Float, wgpu.TextureFormatRGBA32Float,
		wgpu.TextureFormatR32Uint, wgpu.TextureFormatR32Sint:
		return false
	}
	return true
}
