package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Renderer records and submits the frame's single render pass. Every frame
// slot has its own command buffer manager so buffers are only recycled after
// the slot's fence retired.
type Renderer struct {
	device    *CoreDevice
	swapchain *CoreSwapchain
	registry  *Registry
	resources *Resources

	managers []*CommandBufferManager
	cmd      vk.CommandBuffer
}

func NewRenderer(ctx *Context, registry *Registry, resources *Resources) (*Renderer, error) {
	r := &Renderer{
		device:    ctx.Device(),
		swapchain: ctx.Swapchain(),
		registry:  registry,
		resources: resources,
	}
	for i := 0; i < FramesInFlight; i++ {
		m, err := NewCommandBufferManager(r.device.Handle(), r.device.Families().Graphics)
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("command buffer manager %d: %w", i, err)
		}
		r.managers = append(r.managers, m)
	}
	return r, nil
}

// Record fills a command buffer that clears image and draws the mesh with the
// selected pipeline. On failure the acquired image is released back to the slot.
func (r *Renderer) Record(image uint32, pass Pass) error {
	cmd, err := r.record(image, pass)
	if err != nil {
		r.drain()
		return err
	}
	r.cmd = cmd
	return nil
}

func (r *Renderer) record(image uint32, pass Pass) (vk.CommandBuffer, error) {
	if pass.Pipeline < 0 || pass.Pipeline >= r.registry.Len() {
		return nil, fmt.Errorf("pipeline index %d out of range [0,%d)", pass.Pipeline, r.registry.Len())
	}
	pipeline := r.registry.At(pass.Pipeline)

	slot, _ := r.swapchain.Slot()
	m := r.managers[slot]
	m.Reset()
	cmd, err := m.NewCommandBuffer()
	if err != nil {
		return nil, err
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("begin command buffer: %w", err)
	}

	extent := r.swapchain.Extent()
	area := vk.Rect2D{Extent: extent}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      r.swapchain.RenderPass(),
		Framebuffer:     r.swapchain.Framebuffer(image),
		RenderArea:      area,
		ClearValueCount: 1,
		PClearValues:    []vk.ClearValue{vk.NewClearValue(pass.Clear.float32s())},
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline.Handle())
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{area})

	if set, ok := r.resources.BindingSet(); ok && pipeline.HasBindings() {
		vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, pipeline.Layout(),
			0, 1, []vk.DescriptorSet{set}, 0, nil)
	}
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{r.resources.VertexBuffer()}, []vk.DeviceSize{0})
	if indices, ok := r.resources.IndexBuffer(); ok {
		vk.CmdBindIndexBuffer(cmd, indices, 0, vk.IndexTypeUint16)
		vk.CmdDrawIndexed(cmd, r.resources.IndexCount(), 1, 0, 0, 0)
	} else {
		vk.CmdDraw(cmd, r.resources.VertexCount(), 1, 0, 0)
	}
	vk.CmdEndRenderPass(cmd)

	if err := NewError(vk.EndCommandBuffer(cmd)); err != nil {
		return nil, fmt.Errorf("end command buffer: %w", err)
	}
	return cmd, nil
}

var colorOutputStage = []vk.PipelineStageFlags{
	vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
}

// Submit queues the recorded buffer. It waits for the image to be acquired and
// signals the slot's render-finished semaphore and fence.
func (r *Renderer) Submit(image uint32) error {
	_, sync := r.swapchain.Slot()
	fences := []vk.Fence{sync.InFlight}
	vk.ResetFences(r.device.Handle(), 1, fences)
	ret := vk.QueueSubmit(r.device.graphics, 1, []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{sync.Acquired},
		PWaitDstStageMask:    colorOutputStage,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{r.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sync.Rendered},
	}}, sync.InFlight)
	if ret != vk.Success {
		r.drain()
		return frameError(ret)
	}
	return nil
}

// drain abandons the current slot's frame: an empty batch consumes the acquire
// semaphore and signals the slot fence, so the next wait on the slot returns.
// The image itself stays acquired until the engine reapplies the surface.
func (r *Renderer) drain() {
	_, sync := r.swapchain.Slot()
	fences := []vk.Fence{sync.InFlight}
	vk.ResetFences(r.device.Handle(), 1, fences)
	ret := vk.QueueSubmit(r.device.graphics, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sync.Acquired},
		PWaitDstStageMask:  colorOutputStage,
	}}, sync.InFlight)
	if err := NewError(ret); err != nil {
		Logger().Warn("drain abandoned frame", "err", err)
	}
}

func (r *Renderer) Destroy() {
	if r.device != nil {
		r.device.WaitIdle()
	}
	for _, m := range r.managers {
		m.Destroy()
	}
	r.managers = nil
}
