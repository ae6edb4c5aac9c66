package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/camera"
	"github.com/Carmen-Shannon/oxy-outline/engine/model"
	"github.com/Carmen-Shannon/oxy-outline/engine/profiler"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/outline_pass"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-outline/engine/scene"
	"github.com/Carmen-Shannon/oxy-outline/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

// fakeWindow keeps the callbacks the engine installs so tests can fire them.
type fakeWindow struct {
	width, height int
	closeRequests int

	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(keyCode uint32)
	onMouseButton func(button window.MouseButton, pressed bool, x, y int32)
	onMouseMove   func(x, y int32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(func())                     {}
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))   { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))        {}
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y int32))     { w.onMouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return w.closeRequests == 0 }
func (w *fakeWindow) RequestClose()                                { w.closeRequests++ }
func (w *fakeWindow) Close() error                                 { return nil }
func (w *fakeWindow) ProcessMessages()                             {}
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

func (w *fakeWindow) SetMouseButtonCallback(cb func(button window.MouseButton, pressed bool, x, y int32)) {
	w.onMouseButton = cb
}

// fakeRenderer counts the frame lifecycle calls the engine makes.
type fakeRenderer struct {
	width, height int
	resizeErr     error

	begins, ends, cancels, presents int
	meshUploads                     int
	writes                          int
}

var _ FrameRenderer = &fakeRenderer{}

func (r *fakeRenderer) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	r.meshUploads++
	return nil
}

func (r *fakeRenderer) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}

func (r *fakeRenderer) WriteBuffers([]bind_group_provider.BufferWrite) { r.writes++ }
func (r *fakeRenderer) RegisterPipelines(...pipeline.Pipeline) error   { return nil }
func (r *fakeRenderer) Size() (int, int)                               { return r.width, r.height }
func (r *fakeRenderer) TargetGeneration() uint64                       { return 1 }
func (r *fakeRenderer) BeginPass(renderer.PassDescriptor) error        { return nil }
func (r *fakeRenderer) EndPass()                                       {}

func (r *fakeRenderer) TargetView(key string) (*wgpu.TextureView, error) {
	return nil, fmt.Errorf("%w: %s", renderer.ErrUnknownTarget, key)
}

func (r *fakeRenderer) DrawCall(string, bind_group_provider.BindGroupProvider, []bind_group_provider.BindGroupProvider) error {
	return nil
}

func (r *fakeRenderer) DrawFullscreen(string, []bind_group_provider.BindGroupProvider) error {
	return nil
}

func (r *fakeRenderer) Resize(width, height int) error {
	if r.resizeErr != nil {
		return r.resizeErr
	}
	r.width, r.height = width, height
	return nil
}

func (r *fakeRenderer) BeginFrame() error {
	r.begins++
	return nil
}

func (r *fakeRenderer) EndFrame() error {
	r.ends++
	return nil
}

func (r *fakeRenderer) CancelFrame() { r.cancels++ }
func (r *fakeRenderer) Present()     { r.presents++ }

// fakePass fails its Render with err when set and records sizes.
type fakePass struct {
	err     error
	renders int
	sizes   [][2]int
}

var _ outline_pass.Pass = &fakePass{}

func (p *fakePass) Name() string                         { return "fake" }
func (p *fakePass) Init(outline_pass.PassRenderer) error { return nil }
func (p *fakePass) SetSize(width, height int)            { p.sizes = append(p.sizes, [2]int{width, height}) }
func (p *fakePass) SetRenderToScreen(bool)               {}
func (p *fakePass) RenderToScreen() bool                 { return true }
func (p *fakePass) Dispose()                             {}

func (p *fakePass) Render(outline_pass.PassRenderer) error {
	p.renders++
	return p.err
}

func testScene(name string) scene.Scene {
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController(
		camera.WithRadius(10),
		camera.WithAngles(0, 0),
	)))
	tri := model.NewMesh(
		model.WithName("tri"),
		model.WithGeometry([]common.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}, []uint32{0, 1, 2}),
	)
	return scene.NewScene(name, cam, scene.WithActive(true), scene.WithMeshes(tri))
}

func newTestEngine(pass *fakePass, options ...EngineBuilderOption) (*engine, *fakeWindow, *fakeRenderer) {
	win := &fakeWindow{width: 800, height: 600}
	r := &fakeRenderer{width: 800, height: 600}
	e := NewEngine(append([]EngineBuilderOption{
		WithWindow(win),
		WithRenderer(r),
		WithComposer(outline_pass.NewComposer(outline_pass.WithPasses(pass))),
	}, options...)...)
	return e.(*engine), win, r
}

func TestRenderFramePresents(t *testing.T) {
	pass := &fakePass{}
	e, _, r := newTestEngine(pass, WithScene(0, testScene("main")), WithProfiling(true))

	if !e.renderFrame() {
		t.Fatal("renderFrame() = false, want true")
	}
	if r.meshUploads != 1 || r.writes != 1 {
		t.Errorf("scene not uploaded and synced: uploads %d, writes %d", r.meshUploads, r.writes)
	}
	if pass.renders != 1 || r.begins != 1 || r.ends != 1 || r.presents != 1 || r.cancels != 0 {
		t.Errorf("frame lifecycle: renders %d begins %d ends %d presents %d cancels %d",
			pass.renders, r.begins, r.ends, r.presents, r.cancels)
	}

	// uploaded meshes are not uploaded again
	e.renderFrame()
	if r.meshUploads != 1 {
		t.Errorf("meshUploads = %d after second frame, want 1", r.meshUploads)
	}
}

func TestRenderFrameSkipsInactiveScenes(t *testing.T) {
	s := testScene("idle")
	s.SetActive(false)
	e, _, r := newTestEngine(&fakePass{}, WithScene(0, s))

	e.renderFrame()
	if r.meshUploads != 0 || r.writes != 0 {
		t.Errorf("inactive scene uploaded: uploads %d, writes %d", r.meshUploads, r.writes)
	}
}

func TestRenderFrameCancelsOnPassError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "stale target", err: fmt.Errorf("bind targets: %w", renderer.ErrStaleTarget)},
		{name: "other failure", err: errors.New("pipeline missing")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, r := newTestEngine(&fakePass{err: tt.err})
			if e.renderFrame() {
				t.Fatal("renderFrame() = true, want false")
			}
			if r.cancels != 1 || r.ends != 0 || r.presents != 0 {
				t.Errorf("cancels %d ends %d presents %d, want 1 0 0", r.cancels, r.ends, r.presents)
			}
		})
	}
}

func TestResizePropagates(t *testing.T) {
	pass := &fakePass{}
	s := testScene("main")
	e, win, r := newTestEngine(pass, WithScene(0, s))

	win.onResize(1000, 500)
	if w, h := r.Size(); w != 1000 || h != 500 {
		t.Errorf("renderer size = %dx%d, want 1000x500", w, h)
	}
	if got := s.Camera().Aspect(); got != 2 {
		t.Errorf("camera aspect = %v, want 2", got)
	}

	// a minimized window reports zero and is ignored
	win.onResize(0, 0)
	if diff := cmp.Diff([][2]int{{1000, 500}}, pass.sizes); diff != "" {
		t.Errorf("composer sizes mismatch (-want +got):\n%s", diff)
	}

	r.resizeErr = errors.New("device lost")
	e.resize(640, 480)
	if len(pass.sizes) != 1 {
		t.Errorf("composer resized after renderer failure: %v", pass.sizes)
	}
}

func TestRunRequiresRenderer(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{width: 1, height: 1}))
	if err := e.Run(); err == nil {
		t.Error("Run() without renderer and composer succeeded")
	}
}

func TestQuitRequestsClose(t *testing.T) {
	e, win, _ := newTestEngine(&fakePass{})
	e.Quit()
	e.Quit()
	if win.closeRequests != 2 {
		t.Errorf("closeRequests = %d, want 2", win.closeRequests)
	}
	select {
	case <-e.quitChannel:
	default:
		t.Error("quit channel still open")
	}
}

func TestTickRate(t *testing.T) {
	e, _, _ := newTestEngine(&fakePass{}, WithTickRate(120))
	if e.engineTickRate != time.Second/120 {
		t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, time.Second/120)
	}
	e.SetTickRate(0)
	if e.engineTickRate != time.Second/60 {
		t.Errorf("engineTickRate = %v after SetTickRate(0), want %v", e.engineTickRate, time.Second/60)
	}
	e.SetRenderFrameLimit(200)
	if got := time.Duration(e.renderFrameLimit.Load()); got != 5*time.Millisecond {
		t.Errorf("renderFrameLimit = %v, want 5ms", got)
	}
	e.SetRenderFrameLimit(0)
	if got := e.renderFrameLimit.Load(); got != 0 {
		t.Errorf("renderFrameLimit = %v after SetRenderFrameLimit(0), want uncapped", time.Duration(got))
	}
}

func TestProfilerOptions(t *testing.T) {
	p := profiler.NewProfiler(profiler.WithInterval(time.Minute))
	e, _, _ := newTestEngine(&fakePass{}, WithProfiling(true), WithProfiler(p))
	if e.profiler != p || !e.profilingEnabled {
		t.Error("WithProfiler/WithProfiling not applied")
	}

	e, _, _ = newTestEngine(&fakePass{}, WithProfiler(nil))
	if e.profiler == nil {
		t.Error("WithProfiler(nil) removed the default profiler")
	}
}

func TestSceneRegistry(t *testing.T) {
	e, _, _ := newTestEngine(&fakePass{})
	a, b := testScene("a"), testScene("b")
	e.AddScene(2, b)
	e.AddScene(1, a)

	names := make([]string, 0, 2)
	for _, s := range e.activeScenes() {
		names = append(names, s.Name())
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("activeScenes order mismatch (-want +got):\n%s", diff)
	}

	e.RemoveScene(1)
	if e.Scene(1) != nil || len(e.Scenes()) != 1 {
		t.Errorf("scene 1 not removed: %v", e.Scenes())
	}
}

func TestOrbitControls(t *testing.T) {
	s := testScene("main")
	e, win, _ := newTestEngine(&fakePass{})
	if err := e.EnableOrbitControls(s); err != nil {
		t.Fatalf("EnableOrbitControls: %v", err)
	}
	ctrl := s.Camera().Controller()

	// left drag orbits a quarter turn
	win.onMouseButton(window.MouseButtonLeft, true, 0, 0)
	win.onMouseMove(-250, 0)
	win.onMouseButton(window.MouseButtonLeft, false, -250, 0)
	if diff := cmp.Diff(common.Vec3{10, 0, 0}, ctrl.Position(), approx); diff != "" {
		t.Errorf("Position() after orbit drag (-want +got):\n%s", diff)
	}

	// moving without a button held does nothing
	win.onMouseMove(400, 400)
	if diff := cmp.Diff(common.Vec3{10, 0, 0}, ctrl.Position(), approx); diff != "" {
		t.Errorf("Position() after free move (-want +got):\n%s", diff)
	}

	win.onKeyDown(common.KeyF)
	lo, hi := s.Bounds()
	center := common.Scale3(common.Add3(lo, hi), 0.5)
	if diff := cmp.Diff(center, ctrl.Target(), approx); diff != "" {
		t.Errorf("Target() after frame (-want +got):\n%s", diff)
	}
}

func TestOrbitControlsPan(t *testing.T) {
	s := testScene("main")
	e, win, _ := newTestEngine(&fakePass{})
	if err := e.EnableOrbitControls(s); err != nil {
		t.Fatalf("EnableOrbitControls: %v", err)
	}
	ctrl := s.Camera().Controller()
	win.height = 100

	// dragging left by half the viewport height moves the target right
	win.onMouseButton(window.MouseButtonRight, true, 100, 100)
	win.onMouseMove(50, 100)
	want := common.Vec3{0.5 * ctrl.Radius(), 0, 0}
	if diff := cmp.Diff(want, ctrl.Target(), approx); diff != "" {
		t.Errorf("Target() after pan (-want +got):\n%s", diff)
	}

	before := ctrl.Radius()
	win.onScroll(1)
	if ctrl.Radius() >= before {
		t.Errorf("Radius() = %v after scrolling in, want less than %v", ctrl.Radius(), before)
	}
}

func TestOrbitControlsNeedController(t *testing.T) {
	e, _, _ := newTestEngine(&fakePass{})
	if err := e.EnableOrbitControls(scene.NewScene("bare", camera.NewCamera())); err == nil {
		t.Error("EnableOrbitControls succeeded without a camera controller")
	}
}

func TestKeyDownCallbackSeesOrbitKeys(t *testing.T) {
	s := testScene("main")
	e, win, _ := newTestEngine(&fakePass{})
	if err := e.EnableOrbitControls(s); err != nil {
		t.Fatalf("EnableOrbitControls: %v", err)
	}
	var keys []uint32
	e.SetKeyDownCallback(func(keyCode uint32) { keys = append(keys, keyCode) })

	win.onKeyDown(common.KeyF)
	win.onKeyDown(common.KeyEsc)
	if diff := cmp.Diff([]uint32{common.KeyF, common.KeyEsc}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}
