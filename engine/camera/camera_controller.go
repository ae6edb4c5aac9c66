package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
)

// CameraController owns the camera's positional state. The camera reads position and
// target from it and computes view/projection matrices. Control is orbital: spherical
// coordinates (radius, azimuth, elevation) around a target point.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// SetTarget sets the look-at/pivot point and recomputes the position.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target common.Vec3)

	// Orbit rotates the camera around the target. Elevation is clamped to the bounds.
	//
	// Parameters:
	//   - dAzimuth: change in horizontal angle, radians
	//   - dElevation: change in vertical angle, radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom adjusts the distance to the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan slides the target and camera together across the view plane. Offsets are in
	// units of the orbit radius so panning feels the same at every zoom level.
	//
	// Parameters:
	//   - dx: offset along the camera's right axis
	//   - dy: offset along the camera's up axis
	Pan(dx, dy float32)

	// Radius returns the current distance from the target.
	Radius() float32

	// Frame points the controller at a bounding box and backs off far enough to see all of it.
	//
	// Parameters:
	//   - lo: the box minimum corner
	//   - hi: the box maximum corner
	Frame(lo, hi common.Vec3)
}

type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	zoomSpeed float32
	panSpeed  float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:           &sync.Mutex{},
		radius:       5.0,
		elevation:    float32(math.Pi / 6),
		minRadius:    0.5,
		maxRadius:    500.0,
		minElevation: float32(-math.Pi/2 + 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),
		zoomSpeed:    0.5,
		panSpeed:     1.0,
	}
	for _, option := range options {
		option(cc)
	}
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cc.radius = min(max(cc.radius, cc.minRadius), cc.maxRadius)
	cc.elevation = min(max(cc.elevation, cc.minElevation), cc.maxElevation)

	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = common.Add3(cc.target, common.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += dAzimuth
	cc.elevation += dElevation
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius -= delta * cc.zoomSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	forward := common.Normalize3(common.Sub3(cc.target, cc.position))
	right := common.Normalize3(common.Cross3(forward, common.Vec3{0, 1, 0}))
	up := common.Cross3(right, forward)
	scale := cc.radius * cc.panSpeed
	offset := common.Add3(common.Scale3(right, dx*scale), common.Scale3(up, dy*scale))
	cc.target = common.Add3(cc.target, offset)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Frame(lo, hi common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	extent := common.Sub3(hi, lo)
	cc.target = common.Add3(lo, common.Scale3(extent, 0.5))
	// a distance of twice the bounding radius fits the box in a 45 degree fov
	diag := float32(math.Sqrt(float64(common.Dot3(extent, extent))))
	cc.radius = max(diag, cc.minRadius)
	cc.maxRadius = max(cc.maxRadius, diag*4)
	cc.updatePosition()
}
