package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Render target keys. Pipelines and passes name the textures they draw into and read from
// by these keys.
const (
	// TargetSwapchain is the surface texture acquired for the current frame. It is not owned
	// by the target set and is never sampled.
	TargetSwapchain = "swapchain"

	// TargetSceneColor holds the shaded scene, single sampled. With MSAA on, the scene pass
	// draws into TargetSceneColorMSAA and resolves here.
	TargetSceneColor = "scene_color"

	// TargetSceneColorMSAA is the multisampled companion of TargetSceneColor.
	TargetSceneColorMSAA = "scene_color_msaa"

	// TargetSceneDepth is the depth buffer of the scene pass, matching its sample count.
	TargetSceneDepth = "scene_depth"

	// TargetLabel holds normalized surface labels in a single 32-bit float channel.
	TargetLabel = "label"

	// TargetLabelDepth is the depth buffer of the surface label pass.
	TargetLabelDepth = "label_depth"

	// TargetOutput holds the composited frame when it is not written to the swapchain directly.
	TargetOutput = "output"
)

// LabelTargetFormat is the texture format of TargetLabel. A full 32-bit float keeps labels
// distinct up to 2^24 surfaces, where an 8-bit target would collapse them after 255.
const LabelTargetFormat = wgpu.TextureFormatR32Float

var (
	// ErrStaleTarget is returned when a target's size does not match the most recent Resize.
	ErrStaleTarget = errors.New("render target size does not match the surface size")

	// ErrUnknownTarget is returned for a target key the renderer does not manage.
	ErrUnknownTarget = errors.New("unknown render target")

	// ErrTargetKind is returned when a depth target is attached as color or the reverse.
	ErrTargetKind = errors.New("render target attached with the wrong kind")
)

// TargetSpec describes one render target owned by the renderer.
type TargetSpec struct {
	Key         string
	Format      wgpu.TextureFormat
	SampleCount uint32
	Usage       wgpu.TextureUsage

	// ResolveInto names the single-sampled target a multisampled target resolves into.
	ResolveInto string

	// ClearColor is applied when a pass clears the target. Color targets clear to
	// transparent black so empty pixels stay distinguishable from drawn ones.
	ClearColor wgpu.Color
}

// IsDepth reports whether the spec describes a depth target.
func (s TargetSpec) IsDepth() bool {
	return s.Format == wgpu.TextureFormatDepth24Plus || s.Format == wgpu.TextureFormatDepth32Float
}

// RenderTarget is an allocated render target texture.
type RenderTarget interface {
	// View returns the texture view passes attach or bind.
	View() *wgpu.TextureView

	// Width returns the width the target was allocated at.
	Width() int

	// Height returns the height the target was allocated at.
	Height() int

	// Release frees the texture and its view.
	Release()
}

// TargetAllocator allocates render targets. The wgpu backend implements it; tests use fakes.
type TargetAllocator interface {
	// AllocateTarget creates a texture and view for spec at the given size.
	//
	// Parameters:
	//   - spec: the target description
	//   - width: the texture width in pixels
	//   - height: the texture height in pixels
	//
	// Returns:
	//   - RenderTarget: the allocated target
	//   - error: an error if texture or view creation fails
	AllocateTarget(spec TargetSpec, width, height int) (RenderTarget, error)
}

// DefaultTargetSpecs returns the target set for a surface format and MSAA sample count.
//
// Parameters:
//   - surfaceFormat: the swapchain format, used for every displayable color target
//   - msaa: the scene pass sample count
//
// Returns:
//   - []TargetSpec: the specs in allocation order
func DefaultTargetSpecs(surfaceFormat wgpu.TextureFormat, msaa MSAASampleCount) []TargetSpec {
	sampled := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	specs := []TargetSpec{
		{Key: TargetSceneColor, Format: surfaceFormat, SampleCount: 1, Usage: sampled},
		{Key: TargetSceneDepth, Format: wgpu.TextureFormatDepth24Plus, SampleCount: uint32(msaa), Usage: wgpu.TextureUsageRenderAttachment},
		{Key: TargetLabel, Format: LabelTargetFormat, SampleCount: 1, Usage: sampled},
		{Key: TargetLabelDepth, Format: wgpu.TextureFormatDepth24Plus, SampleCount: 1, Usage: wgpu.TextureUsageRenderAttachment},
		{Key: TargetOutput, Format: surfaceFormat, SampleCount: 1, Usage: sampled},
	}
	if msaa > MSAAOff {
		specs = append(specs, TargetSpec{
			Key:         TargetSceneColorMSAA,
			Format:      surfaceFormat,
			SampleCount: uint32(msaa),
			Usage:       wgpu.TextureUsageRenderAttachment,
			ResolveInto: TargetSceneColor,
		})
	}
	return specs
}

// targetSet owns every render target and reallocates them together on resize.
type targetSet struct {
	mu *sync.Mutex

	alloc      TargetAllocator
	specs      map[string]TargetSpec
	order      []string
	targets    map[string]RenderTarget
	width      int
	height     int
	generation uint64
}

func newTargetSet(alloc TargetAllocator, specs []TargetSpec) *targetSet {
	ts := &targetSet{
		mu:      &sync.Mutex{},
		alloc:   alloc,
		specs:   make(map[string]TargetSpec, len(specs)),
		targets: make(map[string]RenderTarget, len(specs)),
	}
	for _, s := range specs {
		ts.specs[s.Key] = s
		ts.order = append(ts.order, s.Key)
	}
	return ts
}

// resize releases every target and allocates replacements at width x height. The
// generation counter advances so cached bind groups referencing old views can be detected.
// Zero sizes (a minimized window) keep the current targets.
func (ts *targetSet) resize(width, height int) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}

	for key, t := range ts.targets {
		t.Release()
		delete(ts.targets, key)
	}
	ts.width, ts.height = width, height
	ts.generation++

	for _, key := range ts.order {
		t, err := ts.alloc.AllocateTarget(ts.specs[key], width, height)
		if err != nil {
			return fmt.Errorf("allocate target %s at %dx%d: %w", key, width, height, err)
		}
		ts.targets[key] = t
	}
	common.Logger().Debug("render targets reallocated",
		"width", width, "height", height, "count", len(ts.targets), "generation", ts.generation)
	return nil
}

// target returns the allocated target for key, checking it against the last resize.
func (ts *targetSet) target(key string) (RenderTarget, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.targets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, key)
	}
	if t.Width() != ts.width || t.Height() != ts.height {
		return nil, fmt.Errorf("%w: %s is %dx%d, surface is %dx%d",
			ErrStaleTarget, key, t.Width(), t.Height(), ts.width, ts.height)
	}
	return t, nil
}

func (ts *targetSet) spec(key string) (TargetSpec, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	s, ok := ts.specs[key]
	return s, ok
}

// resolveSource returns the multisampled target that resolves into key, if any.
func (ts *targetSet) resolveSource(key string) (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, k := range ts.order {
		if ts.specs[k].ResolveInto == key {
			return k, true
		}
	}
	return "", false
}

func (ts *targetSet) size() (int, int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.width, ts.height
}

func (ts *targetSet) currentGeneration() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.generation
}

func (ts *targetSet) release() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for key, t := range ts.targets {
		t.Release()
		delete(ts.targets, key)
	}
}
