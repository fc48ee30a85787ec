package vkmesh

import (
	"errors"
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// SurfaceConfig is the presentation setup applied to the window surface.
type SurfaceConfig struct {
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	Width       uint32
	Height      uint32
	PresentMode vk.PresentMode
	AlphaMode   vk.CompositeAlphaFlagBits
}

// srgbFormats are the gamma-corrected color formats a surface may offer.
var srgbFormats = map[vk.Format]bool{
	vk.FormatB8g8r8a8Srgb:       true,
	vk.FormatR8g8b8a8Srgb:       true,
	vk.FormatA8b8g8r8SrgbPack32: true,
	vk.FormatB8g8r8Srgb:         true,
	vk.FormatR8g8b8Srgb:         true,
}

// ChooseSurfaceFormat picks the first sRGB format, else the first supported one.
// A lone undefined entry means the surface takes any format.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return vk.SurfaceFormat{
			Format:     vk.FormatB8g8r8a8Srgb,
			ColorSpace: vk.ColorSpaceSrgbNonlinear,
		}, nil
	}
	for _, f := range formats {
		if srgbFormats[f.Format] {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode returns preferred when the surface supports it, else the first supported mode.
func ChoosePresentMode(available []vk.PresentMode, preferred vk.PresentMode, hasPreference bool) vk.PresentMode {
	if hasPreference {
		for _, m := range available {
			if m == preferred {
				return m
			}
		}
	}
	if len(available) == 0 {
		// FIFO support is mandatory
		return vk.PresentModeFifo
	}
	return available[0]
}

// ChooseAlphaMode returns the first supported of opaque, pre-, post-multiplied and inherit.
func ChooseAlphaMode(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, mode := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if supported&vk.CompositeAlphaFlags(mode) != 0 {
			return mode
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

// ChooseExtent follows the surface's current extent when the platform fixes one,
// otherwise clamps the requested size into the supported range.
func ChooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

// swapchainer is the part of the presentation surface the context drives.
type swapchainer interface {
	configure(cfg SurfaceConfig, renewSurface bool) error
	acquire() (uint32, error)
	present(image uint32) error
	destroy()
}

// ContextOptions tune context creation.
type ContextOptions struct {
	Name        string
	Validation  bool
	PresentMode vk.PresentMode
	// HasPresentMode marks PresentMode as an explicit preference.
	HasPresentMode bool
}

// Context owns the GPU: instance, adapter, logical device and the configured surface.
type Context struct {
	instance   *CoreInstance
	display    *CoreDisplay
	device     *CoreDevice
	renderPass *CoreRenderPass
	core       *CoreSwapchain

	swapchain swapchainer
	config    SurfaceConfig
	// set when the last frame failure lost the surface itself
	surfaceLost bool
	// set when the last configure failed and the swapchain may be unusable
	stale bool
}

func newContext(cfg SurfaceConfig, sc swapchainer) *Context {
	return &Context{config: cfg, swapchain: sc}
}

// NewContext initializes the GPU for display and applies the initial surface configuration.
// It returns ErrNoAdapter when no physical device can present to the window.
func NewContext(display *CoreDisplay, opts ContextOptions) (ctx *Context, err error) {
	if opts.Name == "" {
		opts.Name = "vkmesh"
	}
	c := &Context{display: display}
	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	if c.instance, err = NewCoreInstance(opts.Name, display.RequiredExtensions(), opts.Validation); err != nil {
		return nil, err
	}
	if err = display.CreateSurface(c.instance.Handle()); err != nil {
		return nil, err
	}
	if c.device, err = PickAdapter(c.instance.Handle(), display.Surface()); err != nil {
		return nil, err
	}
	if err = c.device.Open(c.instance.Layers()); err != nil {
		return nil, err
	}

	support, err := QuerySurfaceSupport(c.device.gpu, display.Surface())
	if err != nil {
		return nil, fmt.Errorf("query surface: %w", err)
	}
	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return nil, err
	}
	w, h := display.FramebufferSize()
	c.config = SurfaceConfig{
		Format:      format.Format,
		ColorSpace:  format.ColorSpace,
		Width:       uint32(max(w, 0)),
		Height:      uint32(max(h, 0)),
		PresentMode: ChoosePresentMode(support.PresentModes, opts.PresentMode, opts.HasPresentMode),
		AlphaMode:   ChooseAlphaMode(support.Capabilities.SupportedCompositeAlpha),
	}

	if c.renderPass, err = NewCoreRenderPass(c.device.Handle(), c.config.Format); err != nil {
		return nil, err
	}
	c.core = NewCoreSwapchain(c.device, display, c.renderPass)
	c.swapchain = c.core
	if err = c.swapchain.configure(c.config, false); err != nil {
		return nil, err
	}
	return c, nil
}

// Config is the current surface configuration.
func (c *Context) Config() SurfaceConfig {
	return c.config
}

// Reconfigure resizes the surface. Zero dimensions (a minimized window) and the
// current size are ignored unless the last configuration failed.
func (c *Context) Reconfigure(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	next := c.config
	next.Width, next.Height = uint32(width), uint32(height)
	if next == c.config && !c.stale {
		return nil
	}
	Logger().Debug("reconfigure", "width", next.Width, "height", next.Height)
	return c.apply(next, false)
}

// Reapply configures the surface again with the current configuration.
func (c *Context) Reapply() error {
	if err := c.apply(c.config, c.surfaceLost); err != nil {
		return err
	}
	c.surfaceLost = false
	return nil
}

// apply commits cfg only once the swapchain accepted it.
func (c *Context) apply(cfg SurfaceConfig, renewSurface bool) error {
	if err := c.swapchain.configure(cfg, renewSurface); err != nil {
		c.stale = true
		return err
	}
	c.config = cfg
	c.stale = false
	return nil
}

// Acquire takes the next presentable image. After a failed configuration the
// surface reports lost so the caller reapplies it first.
func (c *Context) Acquire() (uint32, error) {
	if c.stale {
		return 0, fmt.Errorf("%w: surface not configured", ErrSurfaceLost)
	}
	image, err := c.swapchain.acquire()
	c.noteLoss(err)
	return image, err
}

// Present queues image for display.
func (c *Context) Present(image uint32) error {
	err := c.swapchain.present(image)
	c.noteLoss(err)
	return err
}

func (c *Context) noteLoss(err error) {
	if ret, ok := ResultOf(err); ok && ret == vk.ErrorSurfaceLost {
		c.surfaceLost = true
	}
}

func (c *Context) Device() *CoreDevice { return c.device }

func (c *Context) Swapchain() *CoreSwapchain { return c.core }

// Destroy releases everything in reverse creation order.
func (c *Context) Destroy() {
	if c.device != nil {
		c.device.WaitIdle()
	}
	if c.swapchain != nil {
		c.swapchain.destroy()
		c.swapchain = nil
	}
	if c.renderPass != nil {
		c.renderPass.Destroy()
		c.renderPass = nil
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.display != nil {
		c.display.DestroySurface()
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}
