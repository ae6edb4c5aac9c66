package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoActivePass is returned by draw calls made outside BeginPass/EndPass.
	ErrNoActivePass = errors.New("no active render pass")

	// ErrPassActive is returned by BeginPass while another pass is still open.
	ErrPassActive = errors.New("render pass already active")
)

// PassDescriptor names the targets of one render pass.
type PassDescriptor struct {
	// Label is a debug label for the pass.
	Label string

	// Color is the key of the color target, TargetSwapchain for the frame's surface texture.
	Color string

	// Depth is the key of the depth target, or "" for a pass without depth.
	Depth string

	// Load keeps the color target's previous contents instead of clearing it.
	Load bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	targets     *targetSet
	inPass      bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	msaa                 MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device, a cache of registered pipelines, and the render target set
// the frame's passes draw into and read from. A frame is BeginFrame, one or more
// BeginPass/draw/EndPass sequences encoded into a single command encoder, EndFrame and Present.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU render pipeline for each Pipeline and caches it by
	// PipelineKey. Attachment formats and sample counts come from the pipeline's color and
	// depth targets. Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if a target is unknown or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and reallocates every render target at the new size.
	// A zero width or height (a minimized window) is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface or a target could not be reconfigured
	Resize(width, height int) error

	// Size returns the size of the most recent successful Resize.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// TargetGeneration returns a counter that advances on every target reallocation.
	// Bind groups holding target views must be rebuilt when it changes.
	//
	// Returns:
	//   - uint64: the current target generation
	TargetGeneration() uint64

	// TargetView returns the view of a render target for binding as a texture.
	//
	// Parameters:
	//   - key: the target key, e.g. TargetLabel
	//
	// Returns:
	//   - *wgpu.TextureView: the target's view
	//   - error: ErrUnknownTarget or ErrStaleTarget
	TargetView(key string) (*wgpu.TextureView, error)

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw uint32 index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates missing GPU buffers and a bind group from a layout descriptor and
	// stores them on the given BindGroupProvider. Texture views must already be set on the
	// provider for texture bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and creates the frame's command encoder.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginPass begins a render pass into the described targets. Color targets clear to
	// their spec's clear color unless Load is set. A multisampled companion of the color
	// target is drawn into and resolved into it.
	//
	// Parameters:
	//   - desc: the pass targets
	//
	// Returns:
	//   - error: ErrPassActive, ErrUnknownTarget or ErrStaleTarget
	BeginPass(desc PassDescriptor) error

	// DrawCall encodes an indexed draw of a mesh in the current pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the registered Pipeline to use
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - bindGroups: providers whose BindGroups are set at groups 0..n-1
	//
	// Returns:
	//   - error: an error if no pass is active or the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// DrawFullscreen encodes a three vertex draw of the full-screen triangle in the current pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the registered Pipeline to use
	//   - bindGroups: providers whose BindGroups are set at groups 0..n-1
	//
	// Returns:
	//   - error: an error if no pass is active or the pipeline is not registered
	DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndPass ends the current render pass.
	EndPass()

	// EndFrame submits the frame's command buffer to the GPU queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// CancelFrame abandons the current frame without submitting it.
	CancelFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees every pipeline, render target and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the window's surface and allocates its render
// targets at the window's size. Panics if no GPU adapter or device is available.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		msaa:          MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if err := r.init(win.Width(), win.Height()); err != nil {
		panic(fmt.Errorf("renderer init: %w", err))
	}
	return r
}

// init configures the surface and allocates the target set at the initial size.
func (r *renderer) init(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(max(width, 1), max(height, 1)); err != nil {
		return err
	}
	r.targets = newTargetSet(r.backend, DefaultTargetSpecs(r.backend.SurfaceFormat(), r.msaa))
	return r.targets.resize(max(width, 1), max(height, 1))
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}

		color, err := r.attachmentSpec(p.ColorTarget())
		if err != nil {
			return fmt.Errorf("pipeline %s: %w", key, err)
		}
		var depth *TargetSpec
		if p.DepthTarget() != "" {
			d, ok := r.targets.spec(p.DepthTarget())
			if !ok {
				return fmt.Errorf("pipeline %s: %w: %s", key, ErrUnknownTarget, p.DepthTarget())
			}
			depth = &d
		}

		if err := r.backend.RegisterRenderPipeline(p, color, depth); err != nil {
			return fmt.Errorf("pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

// attachmentSpec returns the spec a pipeline drawing into key must match. A target with a
// multisampled companion is drawn through the companion, so its sample count applies.
func (r *renderer) attachmentSpec(key string) (TargetSpec, error) {
	if key == TargetSwapchain {
		return TargetSpec{Key: TargetSwapchain, Format: r.backend.SurfaceFormat(), SampleCount: 1}, nil
	}
	if src, ok := r.targets.resolveSource(key); ok {
		key = src
	}
	spec, ok := r.targets.spec(key)
	if !ok {
		return TargetSpec{}, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	return spec, nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	return r.targets.resize(width, height)
}

func (r *renderer) Size() (int, int) {
	return r.targets.size()
}

func (r *renderer) TargetGeneration() uint64 {
	return r.targets.currentGeneration()
}

func (r *renderer) TargetView(key string) (*wgpu.TextureView, error) {
	t, err := r.targets.target(key)
	if err != nil {
		return nil, err
	}
	return t.View(), nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(desc PassDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inPass {
		return ErrPassActive
	}

	a := passAttachments{clear: !desc.Load}
	if desc.Color == TargetSwapchain {
		a.swapchain = true
	} else {
		spec, ok := r.targets.spec(desc.Color)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTarget, desc.Color)
		}
		if spec.IsDepth() {
			return fmt.Errorf("%w: %s is a depth target", ErrTargetKind, desc.Color)
		}
		t, err := r.targets.target(desc.Color)
		if err != nil {
			return err
		}
		a.color = t.View()
		a.clearColor = spec.ClearColor
		if src, ok := r.targets.resolveSource(desc.Color); ok {
			ms, err := r.targets.target(src)
			if err != nil {
				return err
			}
			a.color, a.resolve = ms.View(), t.View()
		}
	}
	if desc.Depth != "" {
		if spec, ok := r.targets.spec(desc.Depth); ok && !spec.IsDepth() {
			return fmt.Errorf("%w: %s is not a depth target", ErrTargetKind, desc.Depth)
		}
		d, err := r.targets.target(desc.Depth)
		if err != nil {
			return err
		}
		a.depth = d.View()
	}

	r.backend.BeginPass(desc.Label, a)
	r.inPass = true
	return nil
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	if meshProvider == nil {
		return errors.New("draw call without a mesh provider")
	}
	return r.draw(pipelineKey, meshProvider, bindGroups)
}

func (r *renderer) DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error {
	return r.draw(pipelineKey, nil, bindGroups)
}

func (r *renderer) draw(pipelineKey string, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	inPass := r.inPass
	r.mu.Unlock()

	if !inPass {
		return ErrNoActivePass
	}
	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.Draw(p, mesh, bindGroups)
	return nil
}

func (r *renderer) EndPass() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inPass {
		return
	}
	r.backend.EndPass()
	r.inPass = false
}

func (r *renderer) EndFrame() error {
	r.EndPass()
	return r.backend.EndFrame()
}

func (r *renderer) CancelFrame() {
	r.mu.Lock()
	r.inPass = false
	r.mu.Unlock()
	r.backend.CancelFrame()
	common.Logger().Warn("frame cancelled")
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.targets.release()
	r.backend.Release()
}
