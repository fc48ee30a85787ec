package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// TextureFormat is the storage format of uploaded textures.
const TextureFormat = vk.FormatR8g8b8a8Srgb

// Texture is a sampled 2D image with its view and sampler.
type Texture struct {
	device  vk.Device
	image   vk.Image
	memory  vk.DeviceMemory
	view    vk.ImageView
	sampler vk.Sampler
	Width   uint32
	Height  uint32
}

// checkPixels rejects byte slices that are not exactly width*height RGBA8 texels.
func checkPixels(pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d texture", ErrPixelSize, width, height)
	}
	if want := width * height * 4; len(pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d", ErrPixelSize, len(pixels), want, width, height)
	}
	return nil
}

func textureImageInfo(width, height uint32) vk.ImageCreateInfo {
	return vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        TextureFormat,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
}

// copyRegion covers the whole image from a tightly packed buffer: one row is width texels.
func copyRegion(width, height uint32) vk.BufferImageCopy {
	return vk.BufferImageCopy{
		BufferRowLength:   width,
		BufferImageHeight: height,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
}

// samplerInfo magnifies linearly, minifies to the nearest texel and clamps every axis.
func samplerInfo() vk.SamplerCreateInfo {
	return vk.SamplerCreateInfo{
		SType:            vk.StructureTypeSamplerCreateInfo,
		MagFilter:        vk.FilterLinear,
		MinFilter:        vk.FilterNearest,
		MipmapMode:       vk.SamplerMipmapModeNearest,
		AddressModeU:     vk.SamplerAddressModeClampToEdge,
		AddressModeV:     vk.SamplerAddressModeClampToEdge,
		AddressModeW:     vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable: vk.False,
		MaxAnisotropy:    1,
		CompareEnable:    vk.False,
		CompareOp:        vk.CompareOpAlways,
		BorderColor:      vk.BorderColorIntOpaqueBlack,
	}
}

// layoutBarrier describes the two transitions an upload needs.
func layoutBarrier(image vk.Image, from, to vk.ImageLayout) (vk.ImageMemoryBarrier, vk.PipelineStageFlags, vk.PipelineStageFlags, error) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	switch {
	case from == vk.ImageLayoutUndefined && to == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		return barrier, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit), nil
	case from == vk.ImageLayoutTransferDstOptimal && to == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		return barrier, vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), nil
	}
	return barrier, 0, 0, fmt.Errorf("unsupported layout transition %d -> %d", from, to)
}

// newTexture creates the image, copies pixels into it in a single transfer and
// leaves it in shader-read layout with a view and sampler.
func newTexture(dev *CoreDevice, pool *CorePool, pixels []byte, width, height uint32) (_ *Texture, err error) {
	staging, err := newStagingBuffer(dev, pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	t := &Texture{device: dev.Handle(), Width: width, Height: height}
	defer func() {
		if err != nil {
			t.Destroy()
		}
	}()

	info := textureImageInfo(width, height)
	if err := NewError(vk.CreateImage(t.device, &info, nil, &t.image)); err != nil {
		return nil, fmt.Errorf("create texture image: %w", err)
	}
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(t.device, t.image, &req)
	req.Deref()
	typeIndex, err := dev.MemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	ret := vk.AllocateMemory(t.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &t.memory)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("allocate texture memory: %w", err)
	}
	if err := NewError(vk.BindImageMemory(t.device, t.image, t.memory, 0)); err != nil {
		return nil, fmt.Errorf("bind texture memory: %w", err)
	}

	toDst, srcStage, dstStage, err := layoutBarrier(t.image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err != nil {
		return nil, err
	}
	toRead, readSrc, readDst, err := layoutBarrier(t.image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		return nil, err
	}
	err = pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toDst})
		vk.CmdCopyBufferToImage(cmd, staging.handle, t.image, vk.ImageLayoutTransferDstOptimal,
			1, []vk.BufferImageCopy{copyRegion(width, height)})
		vk.CmdPipelineBarrier(cmd, readSrc, readDst, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toRead})
	})
	if err != nil {
		return nil, fmt.Errorf("upload texture: %w", err)
	}

	if t.view, err = createImageView(t.device, t.image, TextureFormat); err != nil {
		return nil, fmt.Errorf("texture view: %w", err)
	}
	sampler := samplerInfo()
	if err := NewError(vk.CreateSampler(t.device, &sampler, nil, &t.sampler)); err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	return t, nil
}

func (t *Texture) View() vk.ImageView { return t.view }

func (t *Texture) Sampler() vk.Sampler { return t.sampler }

func (t *Texture) Destroy() {
	var nullSampler vk.Sampler
	if t.sampler != nullSampler {
		vk.DestroySampler(t.device, t.sampler, nil)
		t.sampler = nullSampler
	}
	if t.view != vk.NullImageView {
		vk.DestroyImageView(t.device, t.view, nil)
		t.view = vk.NullImageView
	}
	if t.image != vk.NullImage {
		vk.DestroyImage(t.device, t.image, nil)
		t.image = vk.NullImage
	}
	if t.memory != vk.NullDeviceMemory {
		vk.FreeMemory(t.device, t.memory, nil)
		t.memory = vk.NullDeviceMemory
	}
}
