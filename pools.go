package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CorePool records and submits one-shot transfer work on the graphics queue.
type CorePool struct {
	device vk.Device
	queue  vk.Queue
	pool   vk.CommandPool
	fences *FenceManager
}

func NewCorePool(device vk.Device, family uint32, queue vk.Queue) (*CorePool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("create command pool: %w", err)
	}
	return &CorePool{
		device: device,
		queue:  queue,
		pool:   pool,
		fences: NewFenceManager(device),
	}, nil
}

// OneShot records fn into a throwaway command buffer, submits it and waits for completion.
func (c *CorePool) OneShot(fn func(cmd vk.CommandBuffer)) error {
	bufs := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, bufs)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("allocate one-shot command buffer: %w", err)
	}
	defer vk.FreeCommandBuffers(c.device, c.pool, 1, bufs)
	cmd := bufs[0]

	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := NewError(ret); err != nil {
		return fmt.Errorf("begin one-shot command buffer: %w", err)
	}
	fn(cmd)
	if err := NewError(vk.EndCommandBuffer(cmd)); err != nil {
		return fmt.Errorf("end one-shot command buffer: %w", err)
	}

	fence, err := c.fences.NewFence()
	if err != nil {
		return err
	}
	ret = vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    bufs,
	}}, fence)
	if err := NewError(ret); err != nil {
		// never signaled, hand it back unused
		c.fences.count--
		return fmt.Errorf("submit one-shot commands: %w", err)
	}
	return c.fences.Reset()
}

func (c *CorePool) Destroy() {
	c.fences.Destroy()
	vk.DestroyCommandPool(c.device, c.pool, nil)
}
