package vkmesh

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// CoreDisplay owns the window surface the swapchain presents to.
type CoreDisplay struct {
	window   *glfw.Window
	instance vk.Instance
	surface  vk.Surface
}

// NewCoreDisplay wraps a GLFW window created with the NoAPI client.
func NewCoreDisplay(window *glfw.Window) *CoreDisplay {
	return &CoreDisplay{window: window, surface: vk.NullSurface}
}

// RequiredExtensions lists the instance extensions the window system needs.
func (d *CoreDisplay) RequiredExtensions() []string {
	return d.window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the window surface for instance.
func (d *CoreDisplay) CreateSurface(instance vk.Instance) error {
	ptr, err := d.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return fmt.Errorf("create window surface: %w", err)
	}
	d.instance = instance
	d.surface = vk.SurfaceFromPointer(ptr)
	return nil
}

// RecreateSurface destroys the current surface and creates a fresh one.
// The swapchain bound to the old surface must already be gone.
func (d *CoreDisplay) RecreateSurface() error {
	d.DestroySurface()
	return d.CreateSurface(d.instance)
}

func (d *CoreDisplay) Surface() vk.Surface {
	return d.surface
}

// FramebufferSize is the window size in pixels, which may differ from screen coordinates.
func (d *CoreDisplay) FramebufferSize() (int, int) {
	return d.window.GetFramebufferSize()
}

func (d *CoreDisplay) Window() *glfw.Window {
	return d.window
}

func (d *CoreDisplay) DestroySurface() {
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
}
