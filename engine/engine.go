package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/profiler"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/outline_pass"
	"github.com/Carmen-Shannon/oxy-outline/engine/scene"
	"github.com/Carmen-Shannon/oxy-outline/engine/window"
)

// FrameRenderer is the part of renderer.Renderer the engine drives each frame.
type FrameRenderer interface {
	outline_pass.PassRenderer
	scene.Uploader

	Resize(width, height int) error
	BeginFrame() error
	EndFrame() error
	CancelFrame()
	Present()
}

var _ FrameRenderer = renderer.Renderer(nil)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer FrameRenderer
	composer outline_pass.Composer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit atomic.Int64 // minimum frame duration in nanoseconds; 0 = uncapped

	orbit     *orbitInput
	onKeyDown func(keyCode uint32)
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Composer returns the pass composer rendered each frame.
	Composer() outline_pass.Composer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for scene logic and input processing.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetKeyDownCallback registers the function called for key presses. Keys handled by
	// orbit controls are still passed on.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. Active scenes are uploaded and
	// synced in ascending key order before the composer renders the frame.
	//
	// Parameters:
	//   - key: the z-index determining sync order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// EnableOrbitControls routes window input to the camera controller of s: left drag
	// orbits, right or middle drag pans, the wheel zooms and F frames the scene bounds.
	//
	// Parameters:
	//   - s: the scene whose camera is controlled
	//
	// Returns:
	//   - error: an error if the scene's camera has no controller or there is no window
	EnableOrbitControls(s scene.Scene) error

	// Run initializes the composer, starts the engine and render loops and blocks until
	// the window closes.
	//
	// Returns:
	//   - error: an error if the engine has no window, renderer or composer, or a pass
	//     fails to initialize
	Run() error

	// Quit signals all engine goroutines to stop and asks the window loop to return, which
	// makes Run return. The window itself is closed by its owner.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes message channels and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   frameInterval(defaultTickRate),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
		e.window.SetKeyDownCallback(e.keyDown)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Composer() outline_pass.Composer {
	return e.composer
}

func (e *engine) Run() error {
	if e.window == nil || e.renderer == nil || e.composer == nil {
		return errors.New("engine: Run requires a window, a renderer and a composer")
	}
	if err := e.composer.Init(e.renderer); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	w, h := e.renderer.Size()
	e.composer.SetSize(w, h)

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.composer.Dispose()
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		e.window.RequestClose()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// handle launches the engine and render goroutines, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.Quit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame()

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			// Frame rate limiting
			if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := limit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// renderFrame runs one frame: upload and sync the active scenes, then encode the
// composer's passes between BeginFrame and EndFrame. A frame whose passes fail is
// cancelled; a stale render target after a concurrent resize is expected and only counted.
//
// Returns:
//   - bool: true if the frame was presented
func (e *engine) renderFrame() bool {
	for _, s := range e.activeScenes() {
		if err := s.Upload(e.renderer); err != nil {
			common.Logger().Error("scene upload failed", "scene", s.Name(), "err", err)
			continue
		}
		s.Sync(e.renderer)
	}

	if err := e.renderer.BeginFrame(); err != nil {
		common.Logger().Warn("frame skipped", "err", err)
		return false
	}

	if err := e.composer.Render(e.renderer); err != nil {
		e.renderer.CancelFrame()
		if errors.Is(err, renderer.ErrStaleTarget) {
			common.Logger().Debug("frame raced a resize", "err", err)
			e.profiler.Skip()
		} else {
			common.Logger().Error("frame failed", "err", err)
		}
		return false
	}

	if err := e.renderer.EndFrame(); err != nil {
		common.Logger().Error("frame submit failed", "err", err)
		return false
	}
	e.renderer.Present()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return true
}

// resize propagates a framebuffer size to the renderer, every scene camera and the
// composer. A zero size (minimized window) is ignored.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		if err := e.renderer.Resize(width, height); err != nil {
			common.Logger().Error("resize failed", "width", width, "height", height, "err", err)
			return
		}
	}

	aspect := float32(width) / float32(height)
	for _, s := range e.Scenes() {
		if c := s.Camera(); c != nil {
			c.SetAspect(aspect)
		}
	}
	if e.composer != nil {
		e.composer.SetSize(width, height)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = defaultTickRate
	}
	newRate := frameInterval(fps)

	e.mu.RLock()
	running := e.running
	e.mu.RUnlock()

	if running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameInterval(fps)))
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) EnableOrbitControls(s scene.Scene) error {
	if e.window == nil {
		return errors.New("engine: orbit controls need a window")
	}
	in, err := newOrbitInput(s, e.window.Height)
	if err != nil {
		return err
	}
	e.window.SetMouseButtonCallback(in.onButton)
	e.window.SetMouseMoveCallback(in.onMove)
	e.window.SetScrollCallback(in.onScroll)

	e.mu.Lock()
	e.orbit = in
	e.mu.Unlock()
	return nil
}

func (e *engine) SetKeyDownCallback(callback func(keyCode uint32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onKeyDown = callback
}

// keyDown dispatches a key press to the orbit controls and then the user callback.
func (e *engine) keyDown(keyCode uint32) {
	e.mu.RLock()
	orbit, callback := e.orbit, e.onKeyDown
	e.mu.RUnlock()

	if orbit != nil {
		orbit.onKey(keyCode)
	}
	if callback != nil {
		callback(keyCode)
	}
}
