package vkmesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type fakePresenter struct {
	config     SurfaceConfig
	acquireErr error
	presentErr error
	reapplyErr error

	acquired  int
	presented []uint32
	reapplied int
	resized   [][2]int

	// engine state observed while reconfiguring
	engine *Engine
	states []EngineState
}

func (f *fakePresenter) Config() SurfaceConfig { return f.config }

func (f *fakePresenter) Reconfigure(width, height int) error {
	f.observe()
	f.resized = append(f.resized, [2]int{width, height})
	if width > 0 && height > 0 {
		f.config.Width, f.config.Height = uint32(width), uint32(height)
	}
	return nil
}

func (f *fakePresenter) Reapply() error {
	f.observe()
	f.reapplied++
	return f.reapplyErr
}

func (f *fakePresenter) observe() {
	if f.engine != nil {
		f.states = append(f.states, f.engine.State())
	}
}

func (f *fakePresenter) Acquire() (uint32, error) {
	f.acquired++
	return 2, f.acquireErr
}

func (f *fakePresenter) Present(image uint32) error {
	if f.presentErr != nil {
		return f.presentErr
	}
	f.presented = append(f.presented, image)
	return nil
}

type fakeRecorder struct {
	recordErr error
	submitErr error
	passes    []Pass
	submitted []uint32
}

func (f *fakeRecorder) Record(image uint32, pass Pass) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.passes = append(f.passes, pass)
	return nil
}

func (f *fakeRecorder) Submit(image uint32) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, image)
	return nil
}

func newTestEngine(t *testing.T, pipelines int) (*Engine, *fakePresenter, *fakeRecorder) {
	t.Helper()
	p := &fakePresenter{config: testSurfaceConfig()}
	r := &fakeRecorder{}
	e, err := NewEngine(p, r, pipelines, DefaultClearColor)
	require.NoError(t, err)
	p.engine = e
	return e, p, r
}

func TestNewEngineEmptyRegistry(t *testing.T) {
	_, err := NewEngine(&fakePresenter{}, &fakeRecorder{}, 0, DefaultClearColor)
	assert.ErrorIs(t, err, ErrEmptyRegistry)
}

func TestRenderFrame(t *testing.T) {
	e, p, r := newTestEngine(t, 2)
	assert.Equal(t, Ready, e.State())
	assert.EqualValues(t, 800, e.Frame().Width)

	e.NextPipeline()
	require.NoError(t, e.RenderFrame())
	assert.Equal(t, Ready, e.State())
	assert.EqualValues(t, 1, e.Frames())
	assert.Equal(t, []Pass{{Clear: DefaultClearColor, Pipeline: 1}}, r.passes)
	assert.Equal(t, []uint32{2}, r.submitted)
	assert.Equal(t, []uint32{2}, p.presented)
}

func TestRenderFrameLostSurface(t *testing.T) {
	for _, ret := range []vk.Result{vk.ErrorSurfaceLost, vk.ErrorOutOfDate} {
		e, p, r := newTestEngine(t, 1)
		p.acquireErr = frameError(ret)

		require.NoError(t, e.RenderFrame())
		assert.Equal(t, []EngineState{Reconfiguring}, p.states)
		assert.Equal(t, Ready, e.State())
		assert.Zero(t, e.Frames())
		assert.Equal(t, 1, p.reapplied)
		assert.Empty(t, r.passes)
	}
}

func TestRenderFrameLostOnPresent(t *testing.T) {
	e, p, _ := newTestEngine(t, 1)
	p.presentErr = frameError(vk.ErrorOutOfDate)
	p.reapplyErr = errors.New("still resizing")

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, Ready, e.State())
	assert.Zero(t, e.Frames())
	assert.Equal(t, 1, p.reapplied)

	p.presentErr = nil
	require.NoError(t, e.RenderFrame())
	assert.EqualValues(t, 1, e.Frames())
}

func TestRenderFrameOutOfMemory(t *testing.T) {
	e, p, r := newTestEngine(t, 1)
	r.submitErr = NewError(vk.ErrorOutOfDeviceMemory)

	err := e.RenderFrame()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, Terminating, e.State())
	assert.True(t, e.Done())

	acquired := p.acquired
	assert.ErrorIs(t, e.RenderFrame(), ErrTerminated)
	assert.Equal(t, acquired, p.acquired)
	assert.ErrorIs(t, e.Resize(640, 480), ErrTerminated)
}

func TestRenderFrameOutOfMemoryDuringReapply(t *testing.T) {
	e, p, _ := newTestEngine(t, 1)
	p.acquireErr = frameError(vk.ErrorSurfaceLost)
	p.reapplyErr = NewError(vk.ErrorOutOfHostMemory)

	assert.ErrorIs(t, e.RenderFrame(), ErrOutOfMemory)
	assert.Equal(t, Terminating, e.State())
}

func TestRenderFrameTransient(t *testing.T) {
	e, p, _ := newTestEngine(t, 1)
	p.acquireErr = frameError(vk.Timeout)

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, Ready, e.State())
	assert.Zero(t, e.Frames())
	assert.Zero(t, p.reapplied)
	assert.False(t, e.Done())

	p.acquireErr = nil
	require.NoError(t, e.RenderFrame())
	assert.EqualValues(t, 1, e.Frames())
}

func TestRenderFrameFailureAfterAcquireReleasesImage(t *testing.T) {
	e, p, r := newTestEngine(t, 1)
	r.recordErr = errors.New("pipeline index out of range")

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, Ready, e.State())
	assert.Zero(t, e.Frames())
	assert.Equal(t, 1, p.reapplied)
	assert.Equal(t, []EngineState{Reconfiguring}, p.states)
	assert.Empty(t, p.presented)

	r.recordErr = nil
	r.submitErr = NewError(vk.ErrorDeviceLost)
	require.NoError(t, e.RenderFrame())
	assert.Equal(t, 2, p.reapplied)
	assert.False(t, e.Done())
}

func TestResize(t *testing.T) {
	e, p, _ := newTestEngine(t, 1)

	require.NoError(t, e.Resize(0, 300))
	assert.EqualValues(t, 800, e.Frame().Width)

	require.NoError(t, e.Resize(640, 480))
	assert.Equal(t, []EngineState{Reconfiguring, Reconfiguring}, p.states)
	assert.Equal(t, Ready, e.State())
	assert.EqualValues(t, 640, e.Frame().Width)
	assert.EqualValues(t, 480, e.Frame().Height)
	assert.Equal(t, [][2]int{{0, 300}, {640, 480}}, p.resized)
}

func TestSetCursor(t *testing.T) {
	e, _, _ := newTestEngine(t, 1)

	e.SetCursor(400, 300)
	c := e.Frame().Clear
	assert.InDelta(t, 0.5, c.R, 1e-9)
	assert.InDelta(t, 0.5, c.G, 1e-9)
	assert.Equal(t, DefaultClearColor.B, c.B)
	assert.Equal(t, DefaultClearColor.A, c.A)

	e.SetCursor(-80, 1200)
	c = e.Frame().Clear
	assert.InDelta(t, -0.1, c.R, 1e-9)
	assert.InDelta(t, 2.0, c.G, 1e-9)
}

func TestEngineStateString(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "terminating", Terminating.String())
	assert.Equal(t, "unknown", EngineState(9).String())
}
