package vkmesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Core is the rendering host: it owns every GPU object created for a window
// and drives the engine from the window's event loop.
type Core struct {
	config    Config
	display   *CoreDisplay
	context   *Context
	pool      *CorePool
	resources *Resources
	registry  *Registry
	renderer  *Renderer
	engine    *Engine
	bridge    *Bridge
}

// NewCore initializes the GPU for window, uploads the configured mesh and
// texture and builds every configured pipeline. Failures here are fatal for
// the host; everything created so far is released before returning.
func NewCore(cfg Config, window *glfw.Window) (core *Core, err error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	next, err := ParseKey(cfg.NextKey)
	if err != nil {
		return nil, err
	}
	c := &Core{config: cfg, display: NewCoreDisplay(window)}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	mode, hasMode := cfg.PresentPreference()
	c.context, err = NewContext(c.display, ContextOptions{
		Name:           cfg.Window.Title,
		Validation:     cfg.Validation,
		PresentMode:    mode,
		HasPresentMode: hasMode,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize gpu: %w", err)
	}

	device := c.context.Device()
	c.pool, err = NewCorePool(device.Handle(), device.Families().Graphics, device.GraphicsQueue())
	if err != nil {
		return nil, err
	}

	c.resources = NewResources(device, c.pool)
	mesh := cfg.MeshData()
	if cfg.Textured() {
		pixels, err := c.texturePixels()
		if err != nil {
			return nil, err
		}
		if err := c.resources.UploadTexture(pixels.Data, pixels.Width, pixels.Height); err != nil {
			return nil, fmt.Errorf("upload texture: %w", err)
		}
	}
	if err := c.resources.UploadMesh(mesh); err != nil {
		return nil, fmt.Errorf("upload mesh: %w", err)
	}

	if c.registry, err = BuildRegistry(c.context, c.resources, mesh.Layout, cfg.Pipelines); err != nil {
		return nil, err
	}
	if c.renderer, err = NewRenderer(c.context, c.registry, c.resources); err != nil {
		return nil, err
	}
	if c.engine, err = NewEngine(c.context, c.renderer, c.registry.Len(), *cfg.Clear); err != nil {
		return nil, err
	}
	c.bridge = NewBridge(c.engine, next)

	Logger().Info("core ready",
		"adapter", device.Name(),
		"pipelines", c.registry.Names(),
		"width", c.context.Config().Width,
		"height", c.context.Config().Height)
	return c, nil
}

// texturePixels loads the configured texture, or a checkerboard when none is set.
func (c *Core) texturePixels() (Pixels, error) {
	if c.config.Texture == "" {
		return Checkerboard(256, 256, 32), nil
	}
	return LoadImage(c.config.Texture)
}

func (c *Core) Engine() *Engine { return c.engine }

func (c *Core) Bridge() *Bridge { return c.bridge }

// Run pumps window events and renders until exit is requested or the engine
// terminates. Only an out of memory condition is returned as an error.
func (c *Core) Run() error {
	c.bridge.Attach(c.display.Window())
	for {
		glfw.PollEvents()
		if c.engine.Done() {
			break
		}
		if w, h := c.display.FramebufferSize(); w == 0 || h == 0 {
			// minimized
			glfw.WaitEvents()
			continue
		}
		if err := c.engine.RenderFrame(); err != nil {
			if errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrTerminated) {
				return err
			}
			Logger().Warn("frame", "err", err)
		}
	}
	Logger().Info("core stopped", "frames", c.engine.Frames(), "state", c.engine.State())
	return nil
}

// Close releases the GPU objects in reverse creation order. The window is left to its owner.
func (c *Core) Close() {
	if c.context != nil && c.context.Device() != nil {
		c.context.Device().WaitIdle()
	}
	if c.renderer != nil {
		c.renderer.Destroy()
		c.renderer = nil
	}
	if c.registry != nil {
		c.registry.Destroy()
		c.registry = nil
	}
	if c.resources != nil {
		c.resources.Destroy()
		c.resources = nil
	}
	if c.pool != nil {
		c.pool.Destroy()
		c.pool = nil
	}
	if c.context != nil {
		c.context.Destroy()
		c.context = nil
	}
}
