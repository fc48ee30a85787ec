package vkmesh

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CoreBuffer is a buffer and the memory bound to it.
type CoreBuffer struct {
	device vk.Device
	handle vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
}

func newCoreBuffer(dev *CoreDevice, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*CoreBuffer, error) {
	b := &CoreBuffer{device: dev.Handle(), size: size}
	ret := vk.CreateBuffer(b.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &b.handle)
	if err := NewError(ret); err != nil {
		return nil, fmt.Errorf("create buffer: %w", err)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.device, b.handle, &req)
	req.Deref()
	typeIndex, err := dev.MemoryType(req.MemoryTypeBits, properties)
	if err != nil {
		b.Destroy()
		return nil, err
	}
	ret = vk.AllocateMemory(b.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &b.memory)
	if err := NewError(ret); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("allocate buffer memory: %w", err)
	}
	if err := NewError(vk.BindBufferMemory(b.device, b.handle, b.memory, 0)); err != nil {
		b.Destroy()
		return nil, fmt.Errorf("bind buffer memory: %w", err)
	}
	return b, nil
}

// newStagingBuffer creates a host visible transfer source holding data.
func newStagingBuffer(dev *CoreDevice, data []byte) (*CoreBuffer, error) {
	staging, err := newCoreBuffer(dev, vk.DeviceSize(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, fmt.Errorf("staging buffer: %w", err)
	}
	if err := staging.write(data); err != nil {
		staging.Destroy()
		return nil, err
	}
	return staging, nil
}

// write copies data into host visible memory.
func (b *CoreBuffer) write(data []byte) error {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.device, b.memory, 0, b.size, 0, &ptr)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("map buffer memory: %w", err)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(b.device, b.memory)
	return nil
}

// uploadBuffer creates a device local buffer of the given usage and fills it
// once through a staging copy. The result is never written again.
func uploadBuffer(dev *CoreDevice, pool *CorePool, data []byte, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	staging, err := newStagingBuffer(dev, data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	buf, err := newCoreBuffer(dev, staging.size,
		vk.BufferUsageFlags(usage)|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	err = pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, staging.handle, buf.handle, 1, []vk.BufferCopy{{Size: staging.size}})
	})
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("copy staging buffer: %w", err)
	}
	return buf, nil
}

func (b *CoreBuffer) Handle() vk.Buffer { return b.handle }

func (b *CoreBuffer) Size() vk.DeviceSize { return b.size }

func (b *CoreBuffer) Destroy() {
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(b.device, b.handle, nil)
		b.handle = vk.NullBuffer
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(b.device, b.memory, nil)
		b.memory = vk.NullDeviceMemory
	}
}
