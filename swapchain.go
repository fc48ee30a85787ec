package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// FramesInFlight is how many frames the CPU may record ahead of the GPU.
const FramesInFlight = 2

// FrameSync is the synchronization set of one frame slot.
type FrameSync struct {
	Acquired vk.Semaphore
	Rendered vk.Semaphore
	InFlight vk.Fence
}

// CoreSwapchain is the presentation surface: the swapchain, its image views and
// framebuffers, and the per-slot semaphores and fences that pace it.
type CoreSwapchain struct {
	device     *CoreDevice
	display    *CoreDisplay
	renderPass *CoreRenderPass

	handle       vk.Swapchain
	extent       vk.Extent2D
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	frames []FrameSync
	slot   int
}

func NewCoreSwapchain(device *CoreDevice, display *CoreDisplay, renderPass *CoreRenderPass) *CoreSwapchain {
	return &CoreSwapchain{
		device:     device,
		display:    display,
		renderPass: renderPass,
		handle:     vk.NullSwapchain,
	}
}

func (s *CoreSwapchain) Extent() vk.Extent2D { return s.extent }

func (s *CoreSwapchain) RenderPass() vk.RenderPass { return s.renderPass.Handle() }

func (s *CoreSwapchain) Framebuffer(image uint32) vk.Framebuffer { return s.framebuffers[image] }

// Slot is the current frame slot and its synchronization objects.
func (s *CoreSwapchain) Slot() (int, FrameSync) { return s.slot, s.frames[s.slot] }

// configure (re)creates the swapchain for cfg. With renewSurface the window
// surface itself is replaced first, which is the only way back from a lost surface.
func (s *CoreSwapchain) configure(cfg SurfaceConfig, renewSurface bool) error {
	s.device.WaitIdle()
	if renewSurface {
		s.teardown()
		s.destroySwapchain()
		if err := s.display.RecreateSurface(); err != nil {
			return err
		}
	}

	support, err := QuerySurfaceSupport(s.device.gpu, s.display.Surface())
	if err != nil {
		return fmt.Errorf("query surface: %w", err)
	}
	caps := support.Capabilities
	extent := ChooseExtent(caps, cfg.Width, cfg.Height)
	if extent.Width == 0 || extent.Height == 0 {
		return fmt.Errorf("surface extent %dx%d is empty", extent.Width, extent.Height)
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	preTransform := caps.CurrentTransform
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		preTransform = vk.SurfaceTransformIdentityBit
	}

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.display.Surface(),
		MinImageCount:    imageCount,
		ImageFormat:      cfg.Format,
		ImageColorSpace:  cfg.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   cfg.AlphaMode,
		PresentMode:      cfg.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     s.handle,
	}
	families := s.device.Families()
	if !families.Shared() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = families.Unique()
	}

	var swapchain vk.Swapchain
	if err := NewError(vk.CreateSwapchain(s.device.handle, &info, nil, &swapchain)); err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	s.teardown()
	s.destroySwapchain()
	s.handle = swapchain
	s.extent = extent

	if err := s.createImages(cfg.Format); err != nil {
		return err
	}
	if err := s.createSync(); err != nil {
		return err
	}
	Logger().Info("surface configured",
		"width", extent.Width, "height", extent.Height,
		"images", len(s.images), "present", cfg.PresentMode)
	return nil
}

func (s *CoreSwapchain) createImages(format vk.Format) error {
	dev := s.device.handle
	var count uint32
	if err := NewError(vk.GetSwapchainImages(dev, s.handle, &count, nil)); err != nil {
		return fmt.Errorf("count swapchain images: %w", err)
	}
	s.images = make([]vk.Image, count)
	if err := NewError(vk.GetSwapchainImages(dev, s.handle, &count, s.images)); err != nil {
		return fmt.Errorf("get swapchain images: %w", err)
	}

	for i, image := range s.images {
		view, err := createImageView(dev, image, format)
		if err != nil {
			return fmt.Errorf("swapchain image view %d: %w", i, err)
		}
		s.views = append(s.views, view)

		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(dev, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      s.renderPass.Handle(),
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           s.extent.Width,
			Height:          s.extent.Height,
			Layers:          1,
		}, nil, &fb)
		if err := NewError(ret); err != nil {
			return fmt.Errorf("framebuffer %d: %w", i, err)
		}
		s.framebuffers = append(s.framebuffers, fb)
	}
	return nil
}

// createSync replaces every slot's semaphores and fences. Fences start
// signaled so the first wait on each slot returns at once.
func (s *CoreSwapchain) createSync() error {
	s.destroySync()
	dev := s.device.handle
	s.frames = make([]FrameSync, FramesInFlight)
	for i := range s.frames {
		f := &s.frames[i]
		ret := vk.CreateSemaphore(dev, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &f.Acquired)
		if err := NewError(ret); err != nil {
			return fmt.Errorf("image acquired semaphore: %w", err)
		}
		ret = vk.CreateSemaphore(dev, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &f.Rendered)
		if err := NewError(ret); err != nil {
			return fmt.Errorf("render finished semaphore: %w", err)
		}
		ret = vk.CreateFence(dev, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &f.InFlight)
		if err := NewError(ret); err != nil {
			return fmt.Errorf("in flight fence: %w", err)
		}
	}
	s.slot = 0
	return nil
}

// acquire waits for the current slot to retire and takes the next image.
// The slot fence stays signaled until work is submitted for it.
func (s *CoreSwapchain) acquire() (uint32, error) {
	dev := s.device.handle
	f := s.frames[s.slot]
	fences := []vk.Fence{f.InFlight}
	if ret := vk.WaitForFences(dev, 1, fences, vk.True, vk.MaxUint64); ret != vk.Success {
		return 0, frameError(ret)
	}

	var image uint32
	ret := vk.AcquireNextImage(dev, s.handle, vk.MaxUint64, f.Acquired, vk.NullFence, &image)
	if err := frameError(ret); err != nil {
		return 0, err
	}
	if ret == vk.Suboptimal {
		Logger().Debug("suboptimal swapchain image", "image", image)
	}
	return image, nil
}

// present queues image for display and advances the frame slot.
func (s *CoreSwapchain) present(image uint32) error {
	f := s.frames[s.slot]
	ret := vk.QueuePresent(s.device.present, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.Rendered},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.handle},
		PImageIndices:      []uint32{image},
	})
	s.slot = (s.slot + 1) % len(s.frames)
	return frameError(ret)
}

func (s *CoreSwapchain) teardown() {
	dev := s.device.handle
	for _, fb := range s.framebuffers {
		vk.DestroyFramebuffer(dev, fb, nil)
	}
	for _, view := range s.views {
		vk.DestroyImageView(dev, view, nil)
	}
	s.framebuffers = nil
	s.views = nil
	s.images = nil
}

func (s *CoreSwapchain) destroySwapchain() {
	if s.handle != vk.NullSwapchain {
		vk.DestroySwapchain(s.device.handle, s.handle, nil)
		s.handle = vk.NullSwapchain
	}
}

func (s *CoreSwapchain) destroySync() {
	dev := s.device.handle
	for _, f := range s.frames {
		vk.DestroySemaphore(dev, f.Acquired, nil)
		vk.DestroySemaphore(dev, f.Rendered, nil)
		vk.DestroyFence(dev, f.InFlight, nil)
	}
	s.frames = nil
}

func (s *CoreSwapchain) destroy() {
	s.device.WaitIdle()
	s.destroySync()
	s.teardown()
	s.destroySwapchain()
}

// createImageView makes a plain 2D color view of image.
func createImageView(device vk.Device, image vk.Image, format vk.Format) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	return view, NewError(ret)
}
