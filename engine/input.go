package engine

import (
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
	"github.com/Carmen-Shannon/oxy-outline/engine/camera"
	"github.com/Carmen-Shannon/oxy-outline/engine/scene"
	"github.com/Carmen-Shannon/oxy-outline/engine/window"
)

// orbitRadiansPerPixel converts mouse travel to orbit angle.
const orbitRadiansPerPixel = math.Pi / 500

// orbitInput translates window input into camera controller moves.
type orbitInput struct {
	mu sync.Mutex

	scene  scene.Scene
	ctrl   camera.CameraController
	height func() int

	orbiting bool
	panning  bool
	lastX    int32
	lastY    int32
}

// newOrbitInput binds to the controller of s's camera. height reports the viewport height
// used to scale pan offsets.
func newOrbitInput(s scene.Scene, height func() int) (*orbitInput, error) {
	cam := s.Camera()
	if cam == nil || cam.Controller() == nil {
		return nil, errors.New("engine: orbit controls need a camera with a controller")
	}
	return &orbitInput{scene: s, ctrl: cam.Controller(), height: height}, nil
}

func (in *orbitInput) onButton(button window.MouseButton, pressed bool, x, y int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	switch button {
	case window.MouseButtonLeft:
		in.orbiting = pressed
	case window.MouseButtonRight, window.MouseButtonMiddle:
		in.panning = pressed
	}
	in.lastX, in.lastY = x, y
}

func (in *orbitInput) onMove(x, y int32) {
	in.mu.Lock()
	dx, dy := float32(x-in.lastX), float32(y-in.lastY)
	in.lastX, in.lastY = x, y
	orbiting, panning := in.orbiting, in.panning
	in.mu.Unlock()

	switch {
	case orbiting:
		in.ctrl.Orbit(-dx*orbitRadiansPerPixel, dy*orbitRadiansPerPixel)
	case panning:
		h := float32(max(in.height(), 1))
		// dragging moves the scene with the cursor
		in.ctrl.Pan(-dx/h, dy/h)
	}
}

func (in *orbitInput) onScroll(delta float32) {
	in.ctrl.Zoom(delta)
}

func (in *orbitInput) onKey(keyCode uint32) {
	if keyCode == common.KeyF {
		in.ctrl.Frame(in.scene.Bounds())
	}
}
