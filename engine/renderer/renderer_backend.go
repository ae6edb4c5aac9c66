package renderer

import (
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA)
// of the scene pass. The label pass is never multisampled: resolving would average labels of
// neighboring surfaces into values that belong to neither.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// passAttachments are the resolved views of one render pass.
type passAttachments struct {
	// color is the view drawn into. Ignored when swapchain is set.
	color *wgpu.TextureView
	// resolve receives the resolved color when color is multisampled.
	resolve *wgpu.TextureView
	// depth is the depth view, nil for passes without depth.
	depth *wgpu.TextureView

	swapchain  bool
	clear      bool
	clearColor wgpu.Color
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

type wgpuRendererBackend interface {
	TargetAllocator

	// SurfaceFormat returns the swapchain texture format chosen by ConfigureSurface.
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface configures the swapchain for a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface reports no usable format
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode. Takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the shader modules, layouts and render pipeline for p.
	//
	// Parameters:
	//   - p: the pipeline object containing the shaders and configuration
	//   - color: the spec of the color attachment the pipeline draws into
	//   - depth: the spec of the depth attachment, nil for a pipeline without depth
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline, color TargetSpec, depth *TargetSpec) error

	// InitMeshBuffers creates the vertex and index buffers of a mesh and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw uint32 index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing uniform/storage buffers and a bind group for the
	// descriptor, reading texture views already stored on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferUsageOverrides: extra usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: buffer sizes to use instead of MinBindingSize (nil safe)
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginPass begins a render pass on the frame encoder.
	//
	// Parameters:
	//   - label: a debug label for the pass
	//   - attachments: the resolved attachment views
	BeginPass(label string, attachments passAttachments)

	// Draw encodes one draw call in the current pass. A nil mesh draws the three vertex
	// full-screen triangle without vertex or index buffers.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - mesh: the provider holding vertex and index buffers, or nil
	//   - bindGroups: the providers whose bind groups are set at group 0..n-1
	Draw(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// EndPass ends the current render pass.
	EndPass()

	// EndFrame finishes the frame encoder and submits it to the GPU queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// CancelFrame drops the frame encoder and swapchain texture without submitting.
	CancelFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release frees the device, surface and instance.
	Release()
}
