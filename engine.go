package vkmesh

import (
	"errors"
	"fmt"
)

// Presenter is the presentation surface as the engine sees it. *Context implements it.
type Presenter interface {
	Config() SurfaceConfig
	Reconfigure(width, height int) error
	Reapply() error
	Acquire() (uint32, error)
	Present(image uint32) error
}

// Pass is what one frame draws.
type Pass struct {
	Clear    Color
	Pipeline int
}

// Recorder turns a Pass into submitted GPU work targeting an acquired image.
type Recorder interface {
	Record(image uint32, pass Pass) error
	Submit(image uint32) error
}

// Engine runs the per-frame state machine and owns the frame state the
// interaction bridge mutates. It is not safe for concurrent use; events and
// frames are serialized by the host loop.
type Engine struct {
	presenter Presenter
	recorder  Recorder
	pipelines int

	state  EngineState
	frame  FrameState
	frames uint64
	exit   bool
}

// NewEngine creates an engine selecting among pipelines entries, starting at index 0.
func NewEngine(presenter Presenter, recorder Recorder, pipelines int, clear Color) (*Engine, error) {
	if pipelines <= 0 {
		return nil, ErrEmptyRegistry
	}
	cfg := presenter.Config()
	return &Engine{
		presenter: presenter,
		recorder:  recorder,
		pipelines: pipelines,
		state:     Ready,
		frame: FrameState{
			Width:  cfg.Width,
			Height: cfg.Height,
			Clear:  clear,
		},
	}, nil
}

func (e *Engine) State() EngineState { return e.state }

// Frame is a copy of the current frame state.
func (e *Engine) Frame() FrameState { return e.frame }

// Frames counts frames that reached presentation.
func (e *Engine) Frames() uint64 { return e.frames }

// RenderFrame acquires an image, records and submits the pass, then presents it.
// A lost surface is reconfigured and the frame skipped without error. Running
// out of memory moves the engine to Terminating and returns ErrOutOfMemory;
// every later call returns ErrTerminated. Other failures are logged and the
// frame is skipped.
func (e *Engine) RenderFrame() error {
	if e.state == Terminating {
		return ErrTerminated
	}
	e.state = Rendering

	image, err := e.presenter.Acquire()
	if err != nil {
		return e.fail("acquire", err)
	}
	pass := Pass{Clear: e.frame.Clear, Pipeline: e.frame.Active}
	if err := e.recorder.Record(image, pass); err != nil {
		return e.fail("record", err)
	}
	if err := e.recorder.Submit(image); err != nil {
		return e.fail("submit", err)
	}
	if err := e.presenter.Present(image); err != nil {
		return e.fail("present", err)
	}

	e.frames++
	e.state = Ready
	return nil
}

// fail applies the failure policy to an error from stage of the frame.
// Once an image was acquired and not presented, the swapchain is rebuilt to
// release it even when the failure itself is transient.
func (e *Engine) fail(stage string, err error) error {
	switch Classify(err) {
	case FrameLost:
		Logger().Info("surface lost, reconfiguring", "stage", stage, "err", err)
		return e.reapply()
	case FrameOutOfMemory:
		return e.terminate(fmt.Errorf("%s: %w", stage, err))
	}
	Logger().Warn("frame skipped", "stage", stage, "err", err)
	if stage == "record" || stage == "submit" {
		return e.reapply()
	}
	e.state = Ready
	return nil
}

// reapply reconfigures the surface and returns to Ready. Only running out of
// memory is reported; other failures are retried by the next frame.
func (e *Engine) reapply() error {
	e.state = Reconfiguring
	if err := e.presenter.Reapply(); err != nil {
		if Classify(err) == FrameOutOfMemory {
			return e.terminate(err)
		}
		Logger().Warn("reconfigure failed, retrying next frame", "err", err)
	}
	e.syncSize()
	e.state = Ready
	return nil
}

func (e *Engine) terminate(err error) error {
	Logger().Error("out of memory, terminating", "err", err)
	e.state = Terminating
	if !errors.Is(err, ErrOutOfMemory) {
		err = fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	return err
}

func (e *Engine) syncSize() {
	cfg := e.presenter.Config()
	e.frame.Width, e.frame.Height = cfg.Width, cfg.Height
}

// NextPipeline advances the active pipeline index.
func (e *Engine) NextPipeline() {
	e.frame.Active = Cycle(e.pipelines, e.frame.Active)
	Logger().Debug("pipeline selected", "index", e.frame.Active)
}

// Resize reconfigures the surface for a new framebuffer size. Zero sizes are ignored.
func (e *Engine) Resize(width, height int) error {
	if e.state == Terminating {
		return ErrTerminated
	}
	e.state = Reconfiguring
	err := e.presenter.Reconfigure(width, height)
	if err != nil && Classify(err) == FrameOutOfMemory {
		return e.terminate(err)
	}
	e.syncSize()
	e.state = Ready
	if err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	return nil
}

// SetCursor maps a pointer position to the red and green clear channels as a
// fraction of the surface size. Values outside [0,1] are kept as they are.
func (e *Engine) SetCursor(x, y float64) {
	if e.frame.Width == 0 || e.frame.Height == 0 {
		return
	}
	e.frame.Clear.R = x / float64(e.frame.Width)
	e.frame.Clear.G = y / float64(e.frame.Height)
}

// RequestExit asks the host loop to stop after the current event.
func (e *Engine) RequestExit() {
	e.exit = true
}

// Done reports whether the host loop should stop.
func (e *Engine) Done() bool {
	return e.exit || e.state == Terminating
}
