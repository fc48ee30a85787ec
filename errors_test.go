package vkmesh

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewErrorSuccessIsNil(t *testing.T) {
	assert.NoError(t, NewError(vk.Success))
}

func TestNewErrorKeepsResult(t *testing.T) {
	err := fmt.Errorf("create buffer: %w", NewError(vk.ErrorOutOfDeviceMemory))
	require.Error(t, err)
	ret, ok := ResultOf(err)
	require.True(t, ok)
	assert.Equal(t, vk.ErrorOutOfDeviceMemory, ret)
}

func TestResultOfPlainError(t *testing.T) {
	_, ok := ResultOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestClassifyResult(t *testing.T) {
	cases := map[vk.Result]FrameErrorKind{
		vk.Success:                FrameOK,
		vk.Suboptimal:             FrameOK,
		vk.ErrorSurfaceLost:       FrameLost,
		vk.ErrorOutOfDate:         FrameLost,
		vk.ErrorOutOfHostMemory:   FrameOutOfMemory,
		vk.ErrorOutOfDeviceMemory: FrameOutOfMemory,
		vk.Timeout:                FrameTransient,
		vk.NotReady:               FrameTransient,
		vk.ErrorDeviceLost:        FrameTransient,
	}
	for ret, want := range cases {
		assert.Equal(t, want, ClassifyResult(ret), "result %d", ret)
	}
}

func TestFrameErrorWrapsSentinelAndResult(t *testing.T) {
	assert.NoError(t, frameError(vk.Suboptimal))

	lost := frameError(vk.ErrorOutOfDate)
	assert.ErrorIs(t, lost, ErrSurfaceLost)
	ret, ok := ResultOf(lost)
	require.True(t, ok)
	assert.Equal(t, vk.ErrorOutOfDate, ret)
	assert.Equal(t, FrameLost, Classify(lost))

	oom := frameError(vk.ErrorOutOfHostMemory)
	assert.ErrorIs(t, oom, ErrOutOfMemory)
	assert.Equal(t, FrameOutOfMemory, Classify(oom))

	assert.Equal(t, FrameTransient, Classify(frameError(vk.Timeout)))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, FrameOK, Classify(nil))
	assert.Equal(t, FrameTransient, Classify(errors.New("boom")))
	assert.Equal(t, FrameLost, Classify(fmt.Errorf("acquire: %w", ErrSurfaceLost)))
	assert.Equal(t, FrameOutOfMemory, Classify(NewError(vk.ErrorOutOfDeviceMemory)))
	assert.Equal(t, "out-of-memory", FrameOutOfMemory.String())
}
