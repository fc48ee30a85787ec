package vkmesh

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type fakeSwapchain struct {
	configs    []SurfaceConfig
	renewed    []bool
	acquireErr error
	presentErr error
	configErr  error
	destroyed  bool
}

func (f *fakeSwapchain) configure(cfg SurfaceConfig, renew bool) error {
	f.configs = append(f.configs, cfg)
	f.renewed = append(f.renewed, renew)
	return f.configErr
}

func (f *fakeSwapchain) acquire() (uint32, error) { return 1, f.acquireErr }

func (f *fakeSwapchain) present(uint32) error { return f.presentErr }

func (f *fakeSwapchain) destroy() { f.destroyed = true }

func testSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		Format:      vk.FormatB8g8r8a8Srgb,
		ColorSpace:  vk.ColorSpaceSrgbNonlinear,
		Width:       800,
		Height:      600,
		PresentMode: vk.PresentModeFifo,
		AlphaMode:   vk.CompositeAlphaOpaqueBit,
	}
}

func TestReconfigureIgnoresZeroSize(t *testing.T) {
	sc := &fakeSwapchain{}
	ctx := newContext(testSurfaceConfig(), sc)

	require.NoError(t, ctx.Reconfigure(0, 300))
	require.NoError(t, ctx.Reconfigure(300, 0))
	require.NoError(t, ctx.Reconfigure(-1, -1))
	assert.Empty(t, sc.configs)
	assert.EqualValues(t, 800, ctx.Config().Width)
	assert.EqualValues(t, 600, ctx.Config().Height)
}

func TestReconfigureIsIdempotent(t *testing.T) {
	sc := &fakeSwapchain{}
	ctx := newContext(testSurfaceConfig(), sc)

	require.NoError(t, ctx.Reconfigure(800, 600))
	assert.Empty(t, sc.configs)

	require.NoError(t, ctx.Reconfigure(640, 480))
	require.NoError(t, ctx.Reconfigure(640, 480))
	require.Len(t, sc.configs, 1)
	assert.EqualValues(t, 640, sc.configs[0].Width)
	assert.EqualValues(t, 480, sc.configs[0].Height)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, sc.configs[0].Format)
	assert.Equal(t, []bool{false}, sc.renewed)
}

func TestReapplyRenewsLostSurface(t *testing.T) {
	sc := &fakeSwapchain{acquireErr: frameError(vk.ErrorSurfaceLost)}
	ctx := newContext(testSurfaceConfig(), sc)

	_, err := ctx.Acquire()
	assert.Equal(t, FrameLost, Classify(err))
	require.NoError(t, ctx.Reapply())
	require.NoError(t, ctx.Reapply())
	assert.Equal(t, []bool{true, false}, sc.renewed)
	assert.Equal(t, testSurfaceConfig(), sc.configs[0])
}

func TestReapplyKeepsSurfaceWhenOutOfDate(t *testing.T) {
	sc := &fakeSwapchain{presentErr: frameError(vk.ErrorOutOfDate)}
	ctx := newContext(testSurfaceConfig(), sc)

	assert.Equal(t, FrameLost, Classify(ctx.Present(0)))
	require.NoError(t, ctx.Reapply())
	assert.Equal(t, []bool{false}, sc.renewed)
}

func TestContextDestroyWithoutDevice(t *testing.T) {
	sc := &fakeSwapchain{}
	ctx := newContext(testSurfaceConfig(), sc)
	ctx.Destroy()
	assert.True(t, sc.destroyed)
}

func TestChooseSurfaceFormat(t *testing.T) {
	_, err := ChooseSurfaceFormat(nil)
	assert.Error(t, err)

	f, err := ChooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatUndefined}})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, f.Format)

	f, err = ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm},
		{Format: vk.FormatR8g8b8a8Srgb},
	})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Srgb, f.Format)

	f, err = ChooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatR16g16b16a16Sfloat},
		{Format: vk.FormatB8g8r8a8Unorm},
	})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR16g16b16a16Sfloat, f.Format)
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox}
	assert.Equal(t, vk.PresentModeMailbox, ChoosePresentMode(modes, vk.PresentModeMailbox, true))
	assert.Equal(t, vk.PresentModeImmediate, ChoosePresentMode(modes, vk.PresentModeFifo, true))
	assert.Equal(t, vk.PresentModeImmediate, ChoosePresentMode(modes, vk.PresentModeMailbox, false))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode(nil, vk.PresentModeMailbox, true))
}

func TestChooseAlphaMode(t *testing.T) {
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, ChooseAlphaMode(vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit|vk.CompositeAlphaInheritBit)))
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, ChooseAlphaMode(vk.CompositeAlphaFlags(vk.CompositeAlphaPreMultipliedBit|vk.CompositeAlphaPostMultipliedBit)))
	assert.Equal(t, vk.CompositeAlphaInheritBit, ChooseAlphaMode(vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit)))
}

func TestChooseExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 1024, Height: 768}}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, ChooseExtent(fixed, 640, 480))

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 2000, Height: 1000},
	}
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, ChooseExtent(free, 640, 480))
	assert.Equal(t, vk.Extent2D{Width: 100, Height: 1000}, ChooseExtent(free, 10, 4000))
}

func TestReconfigureFailureKeepsConfig(t *testing.T) {
	sc := &fakeSwapchain{configErr: errors.New("surface extent 0x0 is empty")}
	ctx := newContext(testSurfaceConfig(), sc)

	assert.Error(t, ctx.Reconfigure(640, 480))
	assert.EqualValues(t, 800, ctx.Config().Width)
	assert.EqualValues(t, 600, ctx.Config().Height)

	sc.configErr = nil
	require.NoError(t, ctx.Reconfigure(640, 480))
	require.Len(t, sc.configs, 2)
	assert.EqualValues(t, 640, ctx.Config().Width)
	assert.EqualValues(t, 480, ctx.Config().Height)
}

func TestReconfigureRetriesSameSizeAfterFailure(t *testing.T) {
	sc := &fakeSwapchain{configErr: errors.New("create swapchain failed")}
	ctx := newContext(testSurfaceConfig(), sc)

	assert.Error(t, ctx.Reconfigure(640, 480))
	sc.configErr = nil
	require.NoError(t, ctx.Reconfigure(800, 600))
	assert.Len(t, sc.configs, 2)

	require.NoError(t, ctx.Reconfigure(800, 600))
	assert.Len(t, sc.configs, 2)
}

func TestAcquireAfterFailedConfigureReportsLost(t *testing.T) {
	sc := &fakeSwapchain{configErr: errors.New("query surface failed")}
	ctx := newContext(testSurfaceConfig(), sc)
	assert.Error(t, ctx.Reconfigure(640, 480))

	_, err := ctx.Acquire()
	assert.Equal(t, FrameLost, Classify(err))

	sc.configErr = nil
	require.NoError(t, ctx.Reapply())
	_, err = ctx.Acquire()
	assert.NoError(t, err)
	assert.EqualValues(t, 800, sc.configs[len(sc.configs)-1].Width)
}

func TestReapplyFailureKeepsSurfaceRenewal(t *testing.T) {
	sc := &fakeSwapchain{acquireErr: frameError(vk.ErrorSurfaceLost)}
	ctx := newContext(testSurfaceConfig(), sc)
	_, err := ctx.Acquire()
	require.Error(t, err)

	sc.acquireErr = nil
	sc.configErr = errors.New("create window surface failed")
	assert.Error(t, ctx.Reapply())
	sc.configErr = nil
	require.NoError(t, ctx.Reapply())
	assert.Equal(t, []bool{true, true}, sc.renewed)
}
