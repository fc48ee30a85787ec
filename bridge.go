package vkmesh

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Bridge translates window events into engine requests.
type Bridge struct {
	engine *Engine
	next   glfw.Key
}

// NewBridge binds next as the pipeline cycling key.
func NewBridge(engine *Engine, next glfw.Key) *Bridge {
	return &Bridge{engine: engine, next: next}
}

func (b *Bridge) OnClose() {
	b.engine.RequestExit()
}

// OnKey reacts to presses only; repeats and releases are ignored.
func (b *Bridge) OnKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		b.engine.RequestExit()
	case b.next:
		b.engine.NextPipeline()
	}
}

// OnResize takes the framebuffer size in pixels.
func (b *Bridge) OnResize(width, height int) {
	if err := b.engine.Resize(width, height); err != nil {
		Logger().Warn("resize failed", "width", width, "height", height, "err", err)
	}
}

// OnCursor takes the pointer position in framebuffer pixels.
func (b *Bridge) OnCursor(x, y float64) {
	b.engine.SetCursor(x, y)
}

// Attach installs the bridge as the window's event callbacks.
func (b *Bridge) Attach(window *glfw.Window) {
	window.SetCloseCallback(func(*glfw.Window) {
		b.OnClose()
	})
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		b.OnKey(key, action)
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		b.OnResize(width, height)
	})
	window.SetContentScaleCallback(func(w *glfw.Window, _, _ float32) {
		b.OnResize(w.GetFramebufferSize())
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		winW, winH := w.GetSize()
		fbW, fbH := w.GetFramebufferSize()
		sx, sy := cursorScale(winW, winH, fbW, fbH)
		b.OnCursor(x*sx, y*sy)
	})
}

// cursorScale converts screen coordinates to framebuffer pixels on HiDPI displays.
func cursorScale(winW, winH, fbW, fbH int) (float64, float64) {
	sx, sy := 1.0, 1.0
	if winW > 0 && fbW > 0 {
		sx = float64(fbW) / float64(winW)
	}
	if winH > 0 && fbH > 0 {
		sy = float64(fbH) / float64(winH)
	}
	return sx, sy
}
