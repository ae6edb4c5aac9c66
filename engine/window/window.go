package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in button callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window owns the native window the outline frames are presented to and forwards its
// input. Every position and size it reports is in framebuffer pixels, the same space the
// label and scene color targets are allocated in.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called with the new framebuffer size whenever
	// it changes. The renderer targets must be reallocated from this callback.
	//
	// Parameters:
	//   - callback: function receiving the framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for vertical wheel movement.
	//
	// Parameters:
	//   - callback: function receiving the wheel delta, positive when scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses and repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common key codes)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key releases.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the button, whether it is now held, and the cursor
	//     position in framebuffer pixels
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in framebuffer pixels
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns the descriptor the renderer creates its WebGPU surface
	// from, or nil when the native window is gone.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration. Safe to
	// call from any goroutine. The native window stays alive until Close.
	RequestClose()

	// Close destroys the native window.
	//
	// Returns:
	//   - error: error if the window was never created or is already closed
	Close() error

	// ProcessMessages runs the message loop on the calling thread until the window
	// closes, calling the update callback every iteration.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// callbacks is the set of event handlers a window dispatches to.
type callbacks struct {
	update      func()
	resize      func(width, height int)
	scroll      func(delta float32)
	keyDown     func(keyCode uint32)
	keyUp       func(keyCode uint32)
	mouseButton func(button MouseButton, pressed bool, x, y int32)
	mouseMove   func(x, y int32)
}

// sizeLimits bounds the framebuffer during interactive resizes. Zero values leave
// that side unbounded.
type sizeLimits struct {
	minWidth, minHeight int
	maxWidth, maxHeight int
}

type engineWindow struct {
	// mu guards size and handlers. Handlers are installed by the engine goroutine and
	// read on the platform thread.
	mu *sync.RWMutex

	title  string
	limits sizeLimits

	// closeKey closes the window when pressed. Zero disables it.
	closeKey uint32

	width  int
	height int

	// scaleX and scaleY convert cursor coordinates to framebuffer pixels.
	scaleX float64
	scaleY float64

	handlers callbacks
	platform *glfwWindow
}

var _ Window = &engineWindow{}

// NewWindow creates the native window. It panics when no window can be created, as
// nothing in the engine can run without one.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies the defaults and options without touching the platform.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:     &sync.RWMutex{},
		title:  "oxy-outline",
		limits: sizeLimits{minWidth: 320, minHeight: 240, maxWidth: 3840, maxHeight: 2160},
		width:  1280,
		height: 720,
		scaleX: 1,
		scaleY: 1,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	w.handlers.update = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	w.handlers.resize = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.mu.Lock()
	w.handlers.scroll = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.mu.Lock()
	w.handlers.keyDown = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.mu.Lock()
	w.handlers.keyUp = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y int32)) {
	w.mu.Lock()
	w.handlers.mouseButton = callback
	w.mu.Unlock()
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.mu.Lock()
	w.handlers.mouseMove = callback
	w.mu.Unlock()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.isRunning()
}

func (w *engineWindow) RequestClose() {
	if w.platform != nil {
		w.platform.requestClose()
	}
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.platform.destroy()
	w.platform = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !w.platform.poll() {
			break
		}
		if update := w.snapshot().update; update != nil {
			update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.height
}

// snapshot returns a copy of the installed handlers.
func (w *engineWindow) snapshot() callbacks {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.handlers
}

// setSize records the framebuffer size and the cursor scale for the matching window size.
func (w *engineWindow) setSize(fbWidth, fbHeight, winWidth, winHeight int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = fbWidth
	w.height = fbHeight
	w.scaleX = cursorScale(fbWidth, winWidth)
	w.scaleY = cursorScale(fbHeight, winHeight)
}

// toFramebuffer converts a cursor position in window coordinates to framebuffer pixels.
func (w *engineWindow) toFramebuffer(x, y float64) (int32, int32) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return int32(x * w.scaleX), int32(y * w.scaleY)
}

// dispatchKey routes a key event, closing the window on the close key.
func (w *engineWindow) dispatchKey(key uint32, pressed bool) (closeRequested bool) {
	if pressed && w.closeKey != 0 && key == w.closeKey {
		return true
	}
	h := w.snapshot()
	switch {
	case pressed && h.keyDown != nil:
		h.keyDown(key)
	case !pressed && h.keyUp != nil:
		h.keyUp(key)
	}
	return false
}

// cursorScale is the framebuffer to window size ratio along one axis. A minimized
// window reports zero sizes, which keeps the previous identity scale.
func cursorScale(fb, win int) float64 {
	if fb <= 0 || win <= 0 {
		return 1
	}
	return float64(fb) / float64(win)
}
