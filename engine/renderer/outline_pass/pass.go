// Package outline_pass holds the render passes of the surface outline effect and the
// Composer that sequences them each frame.
//
// A frame runs the scene pass into scene_color, the SurfaceIdPass into the label target,
// the CompositePass over both, and optionally the PresentPass that copies the composited
// output to the swapchain.
package outline_pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PassRenderer is the part of renderer.Renderer the passes draw through.
type PassRenderer interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	Size() (int, int)
	TargetGeneration() uint64
	TargetView(key string) (*wgpu.TextureView, error)
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginPass(desc renderer.PassDescriptor) error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error
	DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error
	EndPass()
}

var _ PassRenderer = renderer.Renderer(nil)

// MeshSource supplies the geometry drawn by the passes that rasterize meshes.
type MeshSource interface {
	// Visible returns the meshes to draw this frame. Every mesh must already have its
	// vertex, index and uniform buffers uploaded.
	Visible() []model.Mesh

	// CameraProvider returns the provider holding the camera uniform bind group.
	CameraProvider() bind_group_provider.BindGroupProvider

	// MaxLabel returns the scene-wide label normalization denominator, at least 1.
	MaxLabel() uint32
}

// Pass is one step of a composed frame.
type Pass interface {
	// Name identifies the pass in logs and errors.
	Name() string

	// Init registers the pass's pipelines and creates its uniform buffers. It is called
	// once before the first Render.
	//
	// Parameters:
	//   - r: the renderer to register with
	//
	// Returns:
	//   - error: an error if pipeline or buffer creation fails
	Init(r PassRenderer) error

	// SetSize informs the pass of a new viewport size.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	SetSize(width, height int)

	// Render encodes the pass into the current frame. The caller has begun the frame.
	//
	// Parameters:
	//   - r: the renderer to encode into
	//
	// Returns:
	//   - error: renderer.ErrStaleTarget when a target does not match the viewport, or any
	//     other encoding error
	Render(r PassRenderer) error

	// SetRenderToScreen chooses whether the pass writes to the swapchain. Passes that can
	// only draw offscreen ignore it.
	SetRenderToScreen(enabled bool)

	// RenderToScreen reports whether the pass writes to the swapchain.
	RenderToScreen() bool

	// Dispose releases the GPU resources owned by the pass.
	Dispose()
}

// bindTargets points every texture binding of group that is tagged with a render target
// at that target's current view and rebuilds the provider's bind group.
func bindTargets(r PassRenderer, provider bind_group_provider.BindGroupProvider, sh shader.Shader, group int) error {
	desc, ok := sh.BindGroupLayoutDescriptors()[group]
	if !ok {
		return fmt.Errorf("shader %s declares no bind group %d", sh.Key(), group)
	}

	for _, d := range sh.Declarations() {
		if d.Type != shader.AnnotationTypeProvider || d.Args[0] != shader.AnnotationArgTargets || *d.Group != group {
			continue
		}
		view, err := r.TargetView(string(d.Role()))
		if err != nil {
			return err
		}
		provider.SetTextureView(*d.Binding, view)
	}

	provider.ReleaseBindGroup()
	return r.InitBindGroup(provider, desc, nil, nil)
}

// encode runs draw inside a render pass, always ending the pass once it has begun.
func encode(r PassRenderer, desc renderer.PassDescriptor, draw func() error) error {
	if err := r.BeginPass(desc); err != nil {
		return err
	}
	defer r.EndPass()
	return draw()
}
