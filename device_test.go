package vkmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

var (
	graphicsFlags = vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	computeFlags  = vk.QueueFlags(vk.QueueComputeBit)
)

func TestSelectFamiliesPrefersShared(t *testing.T) {
	q := selectFamilies(
		[]vk.QueueFlags{graphicsFlags, computeFlags, graphicsFlags},
		[]bool{false, true, true},
	)
	assert.True(t, q.Complete())
	assert.True(t, q.Shared())
	assert.EqualValues(t, 2, q.Graphics)
	assert.Equal(t, []uint32{2}, q.Unique())
	assert.Len(t, q.queueCreateInfos(), 1)
}

func TestSelectFamiliesSplit(t *testing.T) {
	q := selectFamilies([]vk.QueueFlags{graphicsFlags, computeFlags}, []bool{false, true})
	assert.True(t, q.Complete())
	assert.False(t, q.Shared())
	assert.Equal(t, []uint32{0, 1}, q.Unique())

	infos := q.queueCreateInfos()
	assert.Len(t, infos, 2)
	assert.EqualValues(t, 1, infos[1].QueueFamilyIndex)
	assert.EqualValues(t, 1, infos[1].QueueCount)
}

func TestSelectFamiliesIncomplete(t *testing.T) {
	assert.False(t, selectFamilies([]vk.QueueFlags{computeFlags}, []bool{true}).Complete())
	assert.False(t, selectFamilies([]vk.QueueFlags{graphicsFlags}, []bool{false}).Complete())
	assert.False(t, selectFamilies(nil, nil).Complete())
}

func TestAdapterScore(t *testing.T) {
	families := selectFamilies([]vk.QueueFlags{graphicsFlags}, []bool{true})
	support := SurfaceSupport{
		Formats:      []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb}},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}

	discrete := adapterScore(vk.PhysicalDeviceTypeDiscreteGpu, families, true, support)
	integrated := adapterScore(vk.PhysicalDeviceTypeIntegratedGpu, families, true, support)
	cpu := adapterScore(vk.PhysicalDeviceTypeCpu, families, true, support)
	assert.Greater(t, discrete, integrated)
	assert.Greater(t, integrated, cpu)
	assert.NotZero(t, cpu)

	assert.Zero(t, adapterScore(vk.PhysicalDeviceTypeDiscreteGpu, families, false, support))
	assert.Zero(t, adapterScore(vk.PhysicalDeviceTypeDiscreteGpu, QueueFamilies{}, true, support))
	assert.Zero(t, adapterScore(vk.PhysicalDeviceTypeDiscreteGpu, families, true, SurfaceSupport{
		Formats: support.Formats,
	}))
}
