package outline_pass

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-outline/common"
)

// Composer runs a sequence of passes each frame. Only the last pass is asked to render to
// the screen; every earlier pass draws offscreen.
type Composer interface {
	// AddPass appends a pass. The previous last pass is switched offscreen and the new one
	// inherits the composer's RenderToScreen setting.
	//
	// Parameters:
	//   - p: the pass to append
	AddPass(p Pass)

	// Passes returns the passes in render order.
	Passes() []Pass

	// Init initializes every pass in order.
	//
	// Parameters:
	//   - r: the renderer the passes register with
	//
	// Returns:
	//   - error: the first pass initialization error
	Init(r PassRenderer) error

	// SetSize propagates a viewport size to every pass.
	//
	// Parameters:
	//   - width: the viewport width in pixels
	//   - height: the viewport height in pixels
	SetSize(width, height int)

	// Render encodes every pass in order into the current frame. It stops at the first
	// failing pass; the caller is expected to cancel the frame.
	//
	// Parameters:
	//   - r: the renderer to encode into
	//
	// Returns:
	//   - error: the failing pass's error, wrapped with its name
	Render(r PassRenderer) error

	// SetRenderToScreen sets whether the last pass writes to the swapchain.
	SetRenderToScreen(enabled bool)

	// RenderToScreen reports the composer's setting.
	RenderToScreen() bool

	// Dispose releases every pass.
	Dispose()
}

type composer struct {
	mu *sync.Mutex

	passes         []Pass
	renderToScreen bool
}

var _ Composer = &composer{}

// NewComposer creates a Composer. RenderToScreen defaults to true.
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - Composer: the composer
func NewComposer(options ...ComposerBuilderOption) Composer {
	c := &composer{
		mu:             &sync.Mutex{},
		renderToScreen: true,
	}
	for _, opt := range options {
		opt(c)
	}
	if n := len(c.passes); n > 0 {
		c.passes[n-1].SetRenderToScreen(c.renderToScreen)
	}
	return c
}

func (c *composer) AddPass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addPass(p)
}

func (c *composer) addPass(p Pass) {
	if n := len(c.passes); n > 0 {
		c.passes[n-1].SetRenderToScreen(false)
	}
	p.SetRenderToScreen(c.renderToScreen)
	c.passes = append(c.passes, p)
}

func (c *composer) Passes() []Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Pass(nil), c.passes...)
}

func (c *composer) Init(r PassRenderer) error {
	passes := c.Passes()
	for _, p := range passes {
		if err := p.Init(r); err != nil {
			return fmt.Errorf("init %s pass: %w", p.Name(), err)
		}
	}
	common.Logger().Info("passes initialized", "count", len(passes))
	return nil
}

func (c *composer) SetSize(width, height int) {
	for _, p := range c.Passes() {
		p.SetSize(width, height)
	}
}

func (c *composer) Render(r PassRenderer) error {
	for _, p := range c.Passes() {
		if err := p.Render(r); err != nil {
			return fmt.Errorf("%s pass: %w", p.Name(), err)
		}
	}
	return nil
}

func (c *composer) SetRenderToScreen(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderToScreen = enabled
	if n := len(c.passes); n > 0 {
		c.passes[n-1].SetRenderToScreen(enabled)
	}
}

func (c *composer) RenderToScreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderToScreen
}

func (c *composer) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.passes {
		p.Dispose()
	}
	c.passes = nil
}
