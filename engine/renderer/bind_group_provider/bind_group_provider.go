package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout

	// buffers are owned by the provider and released with it.
	buffers map[int]*wgpu.Buffer

	// textureViews are borrowed from render targets and never released here.
	textureViews map[int]*wgpu.TextureView

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider owns the GPU resources bound by one bind group, or the vertex and
// index buffers of one mesh. Render passes and meshes each hold one provider per group
// they bind, and the renderer fills it through InitBindGroup and InitMeshBuffers.
type BindGroupProvider interface {
	// Label returns the debug label used for every GPU object the provider owns.
	//
	// Returns:
	//   - string: the provider label
	Label() string

	// BindGroup returns the bind group, or nil before InitBindGroup ran.
	BindGroup() *wgpu.BindGroup

	// SetBindGroup stores the bind group created by the renderer.
	SetBindGroup(bg *wgpu.BindGroup)

	// BindGroupLayout returns the layout the bind group was created with.
	BindGroupLayout() *wgpu.BindGroupLayout

	// SetBindGroupLayout stores the layout created by the renderer.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// Buffer retrieves the uniform or storage buffer at a binding index.
	//
	// Parameters:
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none is bound there
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every owned buffer keyed by binding index.
	Buffers() map[int]*wgpu.Buffer

	// SetBuffer stores an owned buffer at a binding index.
	SetBuffer(binding int, buf *wgpu.Buffer)

	// TextureView retrieves the borrowed texture view at a binding index.
	TextureView(binding int) *wgpu.TextureView

	// SetTextureView binds a texture view owned by someone else, typically a render target.
	//
	// Parameters:
	//   - binding: the binding index within the group
	//   - tv: the texture view to bind
	SetTextureView(binding int, tv *wgpu.TextureView)

	VertexBuffer() *wgpu.Buffer
	SetVertexBuffer(buf *wgpu.Buffer)
	IndexBuffer() *wgpu.Buffer
	SetIndexBuffer(buf *wgpu.Buffer)
	IndexCount() int
	SetIndexCount(count int)

	// ReleaseBindGroup releases the bind group and its layout but keeps owned buffers.
	// Passes call it before rebinding render target views after a resize.
	ReleaseBindGroup()

	// Release frees every GPU object the provider owns. Borrowed texture views are dropped
	// without being released.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty BindGroupProvider. The renderer allocates its GPU
// objects on InitBindGroup or InitMeshBuffers.
//
// Parameters:
//   - label: the debug label for GPU objects created for this provider
//
// Returns:
//   - BindGroupProvider: the new provider
func NewBindGroupProvider(label string) BindGroupProvider {
	return &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
	}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) ReleaseBindGroup() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}

func (p *bindGroupProvider) Release() {
	p.ReleaseBindGroup()
	for binding, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, binding)
	}
	clear(p.textureViews)
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
