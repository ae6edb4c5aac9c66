package outline_pass

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/Carmen-Shannon/oxy-outline/engine/outline"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
)

type drawCall struct {
	pipeline string
	mesh     string
	groups   []string
}

type encodedPass struct {
	desc  renderer.PassDescriptor
	draws []drawCall
}

// fakeRenderer records what passes encode without touching a GPU.
type fakeRenderer struct {
	width, height int
	generation    uint64
	views         map[string]*wgpu.TextureView
	staleKey      string

	pipelines  map[string]pipeline.Pipeline
	bindGroups map[string]int
	writes     []bind_group_provider.BufferWrite
	passes     []*encodedPass
	inPass     bool
}

var _ PassRenderer = &fakeRenderer{}

func newFakeRenderer(width, height int) *fakeRenderer {
	r := &fakeRenderer{
		width:      width,
		height:     height,
		pipelines:  make(map[string]pipeline.Pipeline),
		bindGroups: make(map[string]int),
	}
	r.reallocate()
	return r
}

// reallocate hands out fresh views for every target, as a resize does.
func (r *fakeRenderer) reallocate() {
	r.generation++
	r.views = make(map[string]*wgpu.TextureView)
	for _, key := range []string{renderer.TargetSceneColor, renderer.TargetLabel, renderer.TargetOutput} {
		r.views[key] = &wgpu.TextureView{}
	}
}

func (r *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *fakeRenderer) Size() (int, int)         { return r.width, r.height }
func (r *fakeRenderer) TargetGeneration() uint64 { return r.generation }

func (r *fakeRenderer) TargetView(key string) (*wgpu.TextureView, error) {
	if key == r.staleKey {
		return nil, fmt.Errorf("%w: %s", renderer.ErrStaleTarget, key)
	}
	v, ok := r.views[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", renderer.ErrUnknownTarget, key)
	}
	return v, nil
}

func (r *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, _ map[int]uint64) error {
	for _, e := range descriptor.Entries {
		if e.Texture.SampleType != wgpu.TextureSampleTypeUndefined && provider.TextureView(int(e.Binding)) == nil {
			return fmt.Errorf("%s: binding %d has no texture view", provider.Label(), e.Binding)
		}
	}
	r.bindGroups[provider.Label()]++
	return nil
}

func (r *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.writes = append(r.writes, writes...)
}

func (r *fakeRenderer) BeginPass(desc renderer.PassDescriptor) error {
	if r.inPass {
		return renderer.ErrPassActive
	}
	if desc.Color == r.staleKey {
		return renderer.ErrStaleTarget
	}
	r.passes = append(r.passes, &encodedPass{desc: desc})
	r.inPass = true
	return nil
}

func (r *fakeRenderer) DrawCall(key string, mesh bind_group_provider.BindGroupProvider, groups []bind_group_provider.BindGroupProvider) error {
	return r.draw(key, mesh.Label(), groups)
}

func (r *fakeRenderer) DrawFullscreen(key string, groups []bind_group_provider.BindGroupProvider) error {
	return r.draw(key, "", groups)
}

func (r *fakeRenderer) draw(key, mesh string, groups []bind_group_provider.BindGroupProvider) error {
	if !r.inPass {
		return renderer.ErrNoActivePass
	}
	if _, ok := r.pipelines[key]; !ok {
		return fmt.Errorf("render pipeline %q not found in cache", key)
	}
	call := drawCall{pipeline: key, mesh: mesh}
	for _, g := range groups {
		call.groups = append(call.groups, g.Label())
	}
	pass := r.passes[len(r.passes)-1]
	pass.draws = append(pass.draws, call)
	return nil
}

func (r *fakeRenderer) EndPass() { r.inPass = false }

type fakeSource struct {
	meshes   []model.Mesh
	camera   bind_group_provider.BindGroupProvider
	maxLabel uint32
}

func (s *fakeSource) Visible() []model.Mesh                                 { return s.meshes }
func (s *fakeSource) CameraProvider() bind_group_provider.BindGroupProvider { return s.camera }
func (s *fakeSource) MaxLabel() uint32                                      { return s.maxLabel }

func triangleMesh(name string) model.Mesh {
	return model.NewMesh(
		model.WithName(name),
		model.WithGeometry([]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint32{0, 1, 2}),
	)
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestSurfaceIdPassRender(t *testing.T) {
	src := &fakeSource{
		meshes:   []model.Mesh{triangleMesh("a"), triangleMesh("b")},
		camera:   bind_group_provider.NewBindGroupProvider("camera"),
		maxLabel: 7,
	}
	r := newFakeRenderer(640, 480)
	p := NewSurfaceIdPass(src)

	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	pl, ok := r.pipelines[SurfaceIdPipelineKey]
	if !ok {
		t.Fatal("surface id pipeline not registered")
	}
	if pl.ColorTarget() != renderer.TargetLabel || pl.DepthTarget() != renderer.TargetLabelDepth {
		t.Errorf("pipeline targets = %s/%s, want label/label_depth", pl.ColorTarget(), pl.DepthTarget())
	}
	if pl.Blend() != nil {
		t.Error("surface id pipeline blends labels")
	}

	if err := p.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.writes) != 1 || float32At(r.writes[0].Data, 0) != 7 {
		t.Errorf("max_label upload = %v, want 7", r.writes)
	}
	want := []*encodedPass{{
		desc: renderer.PassDescriptor{Label: "Surface Id Pass", Color: renderer.TargetLabel, Depth: renderer.TargetLabelDepth},
		draws: []drawCall{
			{pipeline: SurfaceIdPipelineKey, mesh: "a_mesh", groups: []string{"camera", "a_uniform", "surface_id_params"}},
			{pipeline: SurfaceIdPipelineKey, mesh: "b_mesh", groups: []string{"camera", "b_uniform", "surface_id_params"}},
		},
	}}
	if diff := cmp.Diff(want, r.passes, cmp.AllowUnexported(encodedPass{}, drawCall{})); diff != "" {
		t.Errorf("encoded passes mismatch (-want +got):\n%s", diff)
	}
	if r.inPass {
		t.Error("pass left open")
	}
}

func TestSurfaceIdPassClampsMaxLabel(t *testing.T) {
	src := &fakeSource{camera: bind_group_provider.NewBindGroupProvider("camera")}
	r := newFakeRenderer(16, 16)
	p := NewSurfaceIdPass(src)
	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := float32At(r.writes[0].Data, 0); got != 1 {
		t.Errorf("max_label = %v, want 1", got)
	}
	if p.MaxLabel() != 1 {
		t.Errorf("MaxLabel() = %d, want 1", p.MaxLabel())
	}
}

func TestCompositePassRebindsOnResize(t *testing.T) {
	r := newFakeRenderer(800, 600)
	p := NewCompositePass(outline.NewConfig(outline.WithColor([3]float32{1, 0, 0})))
	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, key := range []string{CompositePipelineKey, CompositeScreenPipelineKey} {
		if _, ok := r.pipelines[key]; !ok {
			t.Fatalf("pipeline %s not registered", key)
		}
	}

	targets := p.(*compositePass).targets
	for i := range 2 {
		if err := p.Render(r); err != nil {
			t.Fatalf("Render %d: %v", i, err)
		}
	}
	if n := r.bindGroups["outline_targets"]; n != 1 {
		t.Errorf("targets bound %d times before resize, want 1", n)
	}
	if targets.TextureView(0) != r.views[renderer.TargetSceneColor] || targets.TextureView(1) != r.views[renderer.TargetLabel] {
		t.Error("composite does not read scene_color at binding 0 and label at binding 1")
	}

	r.reallocate()
	p.SetSize(1024, 768)
	if err := p.Render(r); err != nil {
		t.Fatalf("Render after resize: %v", err)
	}
	if n := r.bindGroups["outline_targets"]; n != 2 {
		t.Errorf("targets bound %d times after resize, want 2", n)
	}
	if targets.TextureView(1) != r.views[renderer.TargetLabel] {
		t.Error("label binding still points at the released view")
	}

	params := r.writes[len(r.writes)-1].Data
	got := [4]float32{float32At(params, 32), float32At(params, 36), float32At(params, 40), float32At(params, 44)}
	if want := [4]float32{1024, 768, 1.0 / 1024, 1.0 / 768}; got != want {
		t.Errorf("screen_size = %v, want %v", got, want)
	}
	if c := float32At(params, 0); c != 1 {
		t.Errorf("outline_color.r = %v, want 1", c)
	}

	last := r.passes[len(r.passes)-1]
	if last.desc.Color != renderer.TargetOutput || last.draws[0].pipeline != CompositePipelineKey {
		t.Errorf("offscreen composite pass = %+v", last)
	}
}

func TestCompositePassRenderToScreen(t *testing.T) {
	r := newFakeRenderer(64, 64)
	p := NewCompositePass(nil)
	p.SetRenderToScreen(true)
	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := drawCall{pipeline: CompositeScreenPipelineKey, groups: []string{"outline_params", "outline_targets"}}
	pass := r.passes[0]
	if pass.desc.Color != renderer.TargetSwapchain {
		t.Errorf("composite color target = %s, want swapchain", pass.desc.Color)
	}
	if diff := cmp.Diff([]drawCall{want}, pass.draws, cmp.AllowUnexported(drawCall{})); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositePassStaleTarget(t *testing.T) {
	r := newFakeRenderer(64, 64)
	r.staleKey = renderer.TargetLabel
	p := NewCompositePass(nil)
	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Render(r); !errors.Is(err, renderer.ErrStaleTarget) {
		t.Fatalf("Render error = %v, want ErrStaleTarget", err)
	}
	if len(r.passes) != 0 {
		t.Error("composite encoded a pass with a stale label target")
	}

	// the next frame retries the binding
	r.staleKey = ""
	if err := p.Render(r); err != nil {
		t.Fatalf("Render after recovery: %v", err)
	}
}

func TestPresentPass(t *testing.T) {
	r := newFakeRenderer(64, 64)
	p := NewPresentPass()
	if err := p.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := p.(*presentPass).source.TextureView(0); got != r.views[renderer.TargetOutput] {
		t.Error("present pass does not read the output target")
	}
	if r.passes[0].desc.Color != renderer.TargetSwapchain || !p.RenderToScreen() {
		t.Error("present pass does not draw to the swapchain")
	}
}

// recordingPass logs calls into a shared slice.
type recordingPass struct {
	name     string
	log      *[]string
	screen   bool
	err      error
	size     [2]int
	disposed bool
}

func (p *recordingPass) Name() string              { return p.name }
func (p *recordingPass) Init(PassRenderer) error   { *p.log = append(*p.log, "init "+p.name); return nil }
func (p *recordingPass) SetSize(w, h int)          { p.size = [2]int{w, h} }
func (p *recordingPass) SetRenderToScreen(on bool) { p.screen = on }
func (p *recordingPass) RenderToScreen() bool      { return p.screen }
func (p *recordingPass) Dispose()                  { p.disposed = true }
func (p *recordingPass) Render(PassRenderer) error {
	*p.log = append(*p.log, "render "+p.name)
	return p.err
}

func TestComposer(t *testing.T) {
	var log []string
	scene := &recordingPass{name: "scene", log: &log}
	ids := &recordingPass{name: "surface_id", log: &log}
	composite := &recordingPass{name: "composite", log: &log}

	c := NewComposer(WithPasses(scene, ids))
	c.AddPass(composite)

	if scene.screen || ids.screen || !composite.screen {
		t.Errorf("render to screen = %v/%v/%v, want only the last pass", scene.screen, ids.screen, composite.screen)
	}

	r := newFakeRenderer(8, 8)
	if err := c.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.SetSize(300, 200)
	if err := c.Render(r); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{"init scene", "init surface_id", "init composite", "render scene", "render surface_id", "render composite"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if ids.size != [2]int{300, 200} {
		t.Errorf("SetSize not propagated: %v", ids.size)
	}

	c.SetRenderToScreen(false)
	if composite.screen || c.RenderToScreen() {
		t.Error("SetRenderToScreen(false) not applied to the last pass")
	}

	log = nil
	ids.err = renderer.ErrStaleTarget
	err := c.Render(r)
	if !errors.Is(err, renderer.ErrStaleTarget) {
		t.Fatalf("Render error = %v, want ErrStaleTarget", err)
	}
	if diff := cmp.Diff([]string{"render scene", "render surface_id"}, log); diff != "" {
		t.Errorf("composer kept rendering after a failure (-want +got):\n%s", diff)
	}

	c.Dispose()
	if !scene.disposed || !ids.disposed || !composite.disposed || len(c.Passes()) != 0 {
		t.Error("Dispose did not release every pass")
	}
}

func TestComposerOffscreenOption(t *testing.T) {
	composite := &recordingPass{name: "composite", log: new([]string)}
	c := NewComposer(WithPasses(composite), WithRenderToScreen(false))
	if composite.screen {
		t.Error("last pass renders to screen with WithRenderToScreen(false)")
	}
	c.AddPass(NewPresentPass())
	if c.Passes()[1].RenderToScreen() != true {
		t.Error("present pass must always draw to the screen")
	}
}
