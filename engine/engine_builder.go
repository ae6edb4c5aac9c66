package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-outline/engine/profiler"
	"github.com/Carmen-Shannon/oxy-outline/engine/renderer/outline_pass"
	"github.com/Carmen-Shannon/oxy-outline/engine/scene"
	"github.com/Carmen-Shannon/oxy-outline/engine/window"
)

// defaultTickRate is the tick callback rate used when none, or a non-positive one, is set.
const defaultTickRate = 60

// EngineBuilderOption configures an engine during NewEngine.
type EngineBuilderOption func(*engine)

// frameInterval converts a rate in frames per second to the duration of one frame. Rates at or
// below zero yield zero.
func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// WithProfiling logs frame statistics through the profiler.
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, e.g. to change its logging interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithTickRate sets how often the tick callback runs. Scene animation and input-driven
// changes belong there; the render loop runs independently.
//
// Parameters:
//   - fps: ticks per second; values at or below zero select 60
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = defaultTickRate
		}
		e.engineTickRate = frameInterval(fps)
	}
}

// WithWindow sets the window whose message loop the engine runs and whose resizes it
// propagates to the renderer, the scene cameras and the composer.
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are encoded with. Run fails without one.
func WithRenderer(r FrameRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithComposer sets the passes rendered each frame, usually scene, surface id and composite.
func WithComposer(c outline_pass.Composer) EngineBuilderOption {
	return func(e *engine) {
		e.composer = c
	}
}

// WithScene registers a scene. Active scenes are uploaded and synced in ascending key order
// before the composer runs.
//
// Parameters:
//   - key: ordering key, lower first
//   - s: the scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit caps the render loop. Zero, the default, leaves it uncapped.
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit.Store(int64(frameInterval(fps)))
	}
}
