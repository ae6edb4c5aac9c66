package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the native half of an engineWindow.
type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// glfwButtons maps the buttons the engine reacts to. Other buttons are dropped.
var glfwButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// newPlatformWindow creates the GLFW window without a client API (WebGPU owns the
// surface) and routes its events to w.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	gw := &glfwWindow{window: win, running: true}
	w.platform = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyUnknown {
			return
		}
		if w.dispatchKey(uint32(key), action != glfw.Release) {
			gw.requestClose()
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if scroll := w.snapshot().scroll; scroll != nil {
			scroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := glfwButtons[button]
		handler := w.snapshot().mouseButton
		if !ok || handler == nil || action == glfw.Repeat {
			return
		}
		x, y := w.toFramebuffer(win.GetCursorPos())
		handler(b, action == glfw.Press, x, y)
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if move := w.snapshot().mouseMove; move != nil {
			move(w.toFramebuffer(xpos, ypos))
		}
	})

	// Render targets follow the framebuffer, which differs from the window size on
	// high-DPI displays.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		winWidth, winHeight := win.GetSize()
		w.setSize(width, height, winWidth, winHeight)
		common.Logger().Debug("framebuffer resized", "width", width, "height", height)
		if resize := w.snapshot().resize; resize != nil {
			resize(width, height)
		}
	})

	win.SetSizeLimits(
		orDontCare(w.limits.minWidth), orDontCare(w.limits.minHeight),
		orDontCare(w.limits.maxWidth), orDontCare(w.limits.maxHeight),
	)

	fbWidth, fbHeight := win.GetFramebufferSize()
	winWidth, winHeight := win.GetSize()
	w.setSize(fbWidth, fbHeight, winWidth, winHeight)
	common.Logger().Info("window created", "title", w.title, "width", fbWidth, "height", fbHeight)
	return nil
}

// orDontCare maps an unset limit to glfw.DontCare.
func orDontCare(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.window.ShouldClose()
}

// requestClose flags the window for closing. glfwSetWindowShouldClose is thread safe.
func (gw *glfwWindow) requestClose() {
	gw.window.SetShouldClose(true)
}

// poll processes pending events without blocking.
func (gw *glfwWindow) poll() bool {
	glfw.PollEvents()
	return gw.isRunning()
}

func (gw *glfwWindow) destroy() {
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
}
