package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CoreRenderPass is the single color-only pass every frame records into.
// It clears on load and leaves the image ready for presentation.
type CoreRenderPass struct {
	device vk.Device
	handle vk.RenderPass
	format vk.Format
}

func renderPassCreateInfo(format vk.Format) vk.RenderPassCreateInfo {
	color := vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	// wait for the presentation engine to release the image before writing it
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{color},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

// NewCoreRenderPass creates the pass for swapchain images of format.
func NewCoreRenderPass(device vk.Device, format vk.Format) (*CoreRenderPass, error) {
	info := renderPassCreateInfo(format)
	var pass vk.RenderPass
	if err := NewError(vk.CreateRenderPass(device, &info, nil, &pass)); err != nil {
		return nil, fmt.Errorf("create render pass: %w", err)
	}
	return &CoreRenderPass{device: device, handle: pass, format: format}, nil
}

func (c *CoreRenderPass) Handle() vk.RenderPass { return c.handle }

func (c *CoreRenderPass) Format() vk.Format { return c.format }

func (c *CoreRenderPass) Destroy() {
	if c.handle != vk.NullRenderPass {
		vk.DestroyRenderPass(c.device, c.handle, nil)
		c.handle = vk.NullRenderPass
	}
}
