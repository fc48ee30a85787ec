package vkmesh

import vk "github.com/vulkan-go/vulkan"

// FenceManager keeps track of fences which in turn are used to keep track of GPU progress.
// The manager is not thread-safe.
type FenceManager struct {
	device vk.Device
	fences []vk.Fence
	count  uint32
}

func NewFenceManager(device vk.Device) *FenceManager {
	return &FenceManager{
		device: device,
	}
}

// Reset waits for the GPU to trigger all outstanding fences and recycles them.
// After Reset returns it is safe to reuse or delete resources the fenced work used.
func (f *FenceManager) Reset() error {
	if f.count == 0 {
		return nil
	}
	active := f.ActiveFences()
	ret := vk.WaitForFences(f.device, f.count, active, vk.True, vk.MaxUint64)
	if isError(ret) {
		return NewError(ret)
	}
	f.count = 0
	return NewError(vk.ResetFences(f.device, uint32(len(active)), active))
}

// NewFence returns an unsignaled fence, recycling one when possible.
func (f *FenceManager) NewFence() (vk.Fence, error) {
	if f.count < uint32(len(f.fences)) {
		fence := f.fences[f.count]
		f.count++
		return fence, nil
	}
	var fence vk.Fence
	ret := vk.CreateFence(f.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if isError(ret) {
		return fence, NewError(ret)
	}
	f.fences = append(f.fences, fence)
	f.count++
	return fence, nil
}

func (f *FenceManager) ActiveFences() []vk.Fence {
	return f.fences[:f.count]
}

func (f *FenceManager) Destroy() {
	f.Reset()
	for i := range f.fences {
		vk.DestroyFence(f.device, f.fences[i], nil)
	}
	f.fences = nil
}

// CommandBufferManager allocates command buffers and recycles them.
// Each frame slot owns one so its buffers can be reset once the slot's fence retired.
// The manager is not thread-safe.
type CommandBufferManager struct {
	device  vk.Device
	pool    vk.CommandPool
	buffers []vk.CommandBuffer
	count   uint32
}

// NewCommandBufferManager creates a manager of primary command buffers for the given queue family.
func NewCommandBufferManager(device vk.Device, queueFamily uint32) (*CommandBufferManager, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamily,
		// buffers are reset individually
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return &CommandBufferManager{
		pool:   pool,
		device: device,
	}, nil
}

// Reset marks every managed command buffer as recyclable.
func (c *CommandBufferManager) Reset() {
	c.count = 0
}

func (c *CommandBufferManager) Destroy() {
	if len(c.buffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.pool, uint32(len(c.buffers)), c.buffers)
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
	c.buffers = nil
}

// NewCommandBuffer returns a fresh or recycled command buffer in the reset state.
func (c *CommandBufferManager) NewCommandBuffer() (vk.CommandBuffer, error) {
	if c.count < uint32(len(c.buffers)) {
		buf := c.buffers[c.count]
		c.count++
		ret := vk.ResetCommandBuffer(buf,
			vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
		return buf, NewError(ret)
	}
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if isError(ret) {
		return nil, NewError(ret)
	}
	c.buffers = append(c.buffers, bufs[0])
	c.count++
	return bufs[0], nil
}
