package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// CoreDevice is the chosen adapter, its logical device and the queues drawn from it.
type CoreDevice struct {
	gpu        vk.PhysicalDevice
	name       string
	properties vk.PhysicalDeviceProperties
	memory     vk.PhysicalDeviceMemoryProperties
	extensions []string
	families   QueueFamilies
	handle     vk.Device
	graphics   vk.Queue
	present    vk.Queue
}

// SurfaceSupport is what a surface offers on a given adapter.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// QuerySurfaceSupport reads capabilities, formats and present modes of surface on gpu.
func QuerySurfaceSupport(gpu vk.PhysicalDevice, surface vk.Surface) (SurfaceSupport, error) {
	var s SurfaceSupport
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &s.Capabilities)
	if err := NewError(ret); err != nil {
		return s, err
	}
	s.Capabilities.Deref()
	s.Capabilities.CurrentExtent.Deref()
	s.Capabilities.MinImageExtent.Deref()
	s.Capabilities.MaxImageExtent.Deref()

	var count uint32
	if err := NewError(vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)); err != nil {
		return s, err
	}
	if count > 0 {
		formats := make([]vk.SurfaceFormat, count)
		vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
		for _, f := range formats {
			f.Deref()
			s.Formats = append(s.Formats, f)
		}
	}

	count = 0
	if err := NewError(vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)); err != nil {
		return s, err
	}
	if count > 0 {
		s.PresentModes = make([]vk.PresentMode, count)
		vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, s.PresentModes)
	}
	return s, nil
}

// adapterScore ranks an adapter. Zero means unusable.
func adapterScore(deviceType vk.PhysicalDeviceType, families QueueFamilies, hasSwapchain bool, support SurfaceSupport) uint32 {
	if !families.Complete() || !hasSwapchain {
		return 0
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return 0
	}
	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 100
	default:
		return 1
	}
}

// PickAdapter chooses the best physical device able to render to surface.
func PickAdapter(instance vk.Instance, surface vk.Surface) (*CoreDevice, error) {
	var count uint32
	if err := NewError(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, fmt.Errorf("count physical devices: %w", err)
	}
	if count == 0 {
		return nil, ErrNoAdapter
	}
	gpus := make([]vk.PhysicalDevice, count)
	if err := NewError(vk.EnumeratePhysicalDevices(instance, &count, gpus)); err != nil {
		return nil, fmt.Errorf("enumerate physical devices: %w", err)
	}

	var (
		best  *CoreDevice
		score uint32
	)
	for _, gpu := range gpus {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(gpu, &props)
		props.Deref()
		name := vk.ToString(props.DeviceName[:])

		families := FindQueueFamilies(gpu, surface)
		exts, err := DeviceExtensions(gpu)
		if err != nil {
			Logger().Warn("skipping adapter", "adapter", name, "err", err)
			continue
		}
		hasSwapchain, _ := NewExtensionSet(exts, []string{SwapchainExtension}, nil).HasRequired()
		var support SurfaceSupport
		if hasSwapchain {
			if support, err = QuerySurfaceSupport(gpu, surface); err != nil {
				Logger().Warn("skipping adapter", "adapter", name, "err", err)
				continue
			}
		}

		s := adapterScore(props.DeviceType, families, hasSwapchain, support)
		Logger().Debug("adapter candidate", "adapter", name, "score", s)
		if s > score {
			score = s
			best = &CoreDevice{gpu: gpu, name: name, properties: props, extensions: exts, families: families}
		}
	}
	if best == nil {
		return nil, ErrNoAdapter
	}
	vk.GetPhysicalDeviceMemoryProperties(best.gpu, &best.memory)
	best.memory.Deref()
	Logger().Info("adapter selected", "adapter", best.name)
	return best, nil
}

// Open creates the logical device with the swapchain extension and fetches the queues.
func (d *CoreDevice) Open(layers []string) error {
	queueInfos := d.families.queueCreateInfos()
	exts := append(safeStrings([]string{SwapchainExtension}), platformDeviceExtensions(d.extensions)...)
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}
	var device vk.Device
	if err := NewError(vk.CreateDevice(d.gpu, &info, nil, &device)); err != nil {
		return fmt.Errorf("create device on %s: %w", d.name, err)
	}
	d.handle = device
	vk.GetDeviceQueue(device, d.families.Graphics, 0, &d.graphics)
	vk.GetDeviceQueue(device, d.families.Present, 0, &d.present)
	return nil
}

func (d *CoreDevice) Name() string { return d.name }

func (d *CoreDevice) Handle() vk.Device { return d.handle }

func (d *CoreDevice) Families() QueueFamilies { return d.families }

// GraphicsQueue is the queue draws and transfers are submitted to.
func (d *CoreDevice) GraphicsQueue() vk.Queue { return d.graphics }

// MemoryType finds a memory type index for an allocation.
func (d *CoreDevice) MemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	index, ok := findMemoryType(d.memory, typeFilter, properties)
	if !ok {
		return 0, fmt.Errorf("no memory type for filter %#x with properties %#x", typeFilter, properties)
	}
	return index, nil
}

// WaitIdle blocks until the device finished all submitted work.
func (d *CoreDevice) WaitIdle() {
	if d.handle != nil {
		vk.DeviceWaitIdle(d.handle)
	}
}

func (d *CoreDevice) Destroy() {
	if d.handle != nil {
		vk.DestroyDevice(d.handle, nil)
		d.handle = nil
	}
}
