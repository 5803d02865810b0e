package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/xrsession/core"
	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/schema"
)

var (
	// ErrDestroyed is returned by every call after Destroy.
	ErrDestroyed = errors.New("compositor destroyed")
	// ErrNotBegun is returned when frames are paced before BeginSession.
	ErrNotBegun = errors.New("compositor session not begun")
	// ErrNoLayerSlot is returned when layers are submitted outside LayerBegin/LayerCommit.
	ErrNoLayerSlot = errors.New("no layer slot open")
)

// CompositorOptions configures a Compositor.
type CompositorOptions struct {
	Period          time.Duration
	Formats         []int64
	SwapchainImages int
	Logger          pslog.Logger
	// Source is the native clock; defaults to timekeeping.Monotonic.
	Source timekeeping.Source
	// Sleep blocks for a duration; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Stats counts what the compositor has seen.
type Stats struct {
	Waited     int
	Begun      int
	Discarded  int
	Committed  int
	Quads      int
	Projection int
}

// Compositor paces frames to a fixed display period and records committed layers.
type Compositor struct {
	period  time.Duration
	formats []int64
	images  int
	logger  pslog.Logger
	source  timekeeping.Source
	sleep   func(time.Duration)

	mu          sync.Mutex
	lastDisplay int64
	running     bool
	slotOpen    bool
	slotBlend   schema.BlendMode
	slotLayers  int
	destroyed   bool
	stats       Stats
}

// NewCompositor creates a paced compositor.
func NewCompositor(opts CompositorOptions) (*Compositor, error) {
	if opts.Period <= 0 {
		return nil, errors.New("frame period must be positive")
	}
	if opts.SwapchainImages <= 0 {
		return nil, errors.New("swapchain image count must be positive")
	}
	if opts.Source == nil {
		opts.Source = timekeeping.Monotonic
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Compositor{
		period:  opts.Period,
		formats: slices.Clone(opts.Formats),
		images:  opts.SwapchainImages,
		logger:  logger.With("component", "compositor"),
		source:  opts.Source,
		sleep:   opts.Sleep,
	}, nil
}

// ImageSwapchain is a ring of images allocated by the compositor.
type ImageSwapchain struct {
	Format int64
	Width  int
	Height int
	images int
}

// NumImages implements core.ImageSwapchain.
func (sc *ImageSwapchain) NumImages() int {
	return sc.images
}

// CreateSwapchain allocates an image ring in one of the compositor's formats.
func (c *Compositor) CreateSwapchain(format int64, width, height int) (*ImageSwapchain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if !slices.Contains(c.formats, format) {
		return nil, fmt.Errorf("format %d is not supported", format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid swapchain size %dx%d", width, height)
	}
	return &ImageSwapchain{Format: format, Width: width, Height: height, images: c.images}, nil
}

// BeginSession implements core.Compositor.
func (c *Compositor) BeginSession(view schema.ViewConfigurationType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.running = true
	c.lastDisplay = 0
	c.logger.Info("compositor session begun", "view_configuration", view, "period", c.period)
	return nil
}

// EndSession implements core.Compositor.
func (c *Compositor) EndSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.running = false
	c.slotOpen = false
	c.logger.Info("compositor session ended", "committed", c.stats.Committed, "discarded", c.stats.Discarded)
	return nil
}

// WaitFrame sleeps until one period before the next display and returns that display time.
func (c *Compositor) WaitFrame() (int64, int64, error) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return 0, 0, ErrDestroyed
	}
	if !c.running {
		c.mu.Unlock()
		return 0, 0, ErrNotBegun
	}
	now, err := c.source()
	if err != nil {
		c.mu.Unlock()
		return 0, 0, err
	}
	period := c.period.Nanoseconds()
	next := c.lastDisplay + period
	if c.lastDisplay == 0 || next <= now {
		next = now + period
	}
	c.lastDisplay = next
	c.stats.Waited++
	c.mu.Unlock()

	if wake := next - period; wake > now {
		c.sleep(time.Duration(wake - now))
	}
	return next, period, nil
}

// BeginFrame implements core.Compositor.
func (c *Compositor) BeginFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.stats.Begun++
	return nil
}

// DiscardFrame implements core.Compositor.
func (c *Compositor) DiscardFrame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.slotOpen = false
	c.stats.Discarded++
	c.logger.Trace("frame discarded")
	return nil
}

// LayerBegin opens a layer slot for one frame.
func (c *Compositor) LayerBegin(blend schema.BlendMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return ErrDestroyed
	}
	c.slotOpen = true
	c.slotBlend = blend
	c.slotLayers = 0
	return nil
}

// LayerQuad implements core.Compositor.
func (c *Compositor) LayerQuad(layer core.QuadSubmission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkSlot(); err != nil {
		return err
	}
	c.slotLayers++
	c.stats.Quads++
	c.logger.Trace("quad layer", "display_time", layer.DisplayTime, "image", layer.Image.Index,
		"size", []float64{layer.Size.X, layer.Size.Y})
	return nil
}

// LayerStereoProjection implements core.Compositor.
func (c *Compositor) LayerStereoProjection(layer core.StereoProjectionSubmission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkSlot(); err != nil {
		return err
	}
	c.slotLayers++
	c.stats.Projection++
	c.logger.Trace("projection layer", "display_time", layer.DisplayTime,
		"left_image", layer.Left.Image.Index, "right_image", layer.Right.Image.Index)
	return nil
}

// LayerCommit closes the layer slot and presents it.
func (c *Compositor) LayerCommit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkSlot(); err != nil {
		return err
	}
	c.slotOpen = false
	c.stats.Committed++
	c.logger.Trace("frame committed", "layers", c.slotLayers, "blend_mode", c.slotBlend)
	return nil
}

func (c *Compositor) checkSlot() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if !c.slotOpen {
		return ErrNoLayerSlot
	}
	return nil
}

// Formats implements core.Compositor.
func (c *Compositor) Formats() []int64 {
	return slices.Clone(c.formats)
}

// Destroy implements core.Compositor.
func (c *Compositor) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil
	}
	c.destroyed = true
	c.logger.Debug("compositor destroyed")
	return nil
}

// Stats returns a snapshot of the counters.
func (c *Compositor) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
