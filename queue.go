package vkmesh

import (
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilies records the family indices a presenting device needs.
type QueueFamilies struct {
	Graphics    uint32
	Present     uint32
	hasGraphics bool
	hasPresent  bool
}

func (q QueueFamilies) Complete() bool {
	return q.hasGraphics && q.hasPresent
}

// Shared reports whether one family serves both graphics and presentation.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Unique lists the distinct family indices, graphics first.
func (q QueueFamilies) Unique() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// selectFamilies picks the graphics and present families from per-family capabilities,
// preferring a single family that does both.
func selectFamilies(flags []vk.QueueFlags, present []bool) QueueFamilies {
	var q QueueFamilies
	for i := range flags {
		graphics := flags[i]&vk.QueueFlags(vk.QueueGraphicsBit) != 0
		canPresent := i < len(present) && present[i]
		if graphics && canPresent {
			return QueueFamilies{Graphics: uint32(i), Present: uint32(i), hasGraphics: true, hasPresent: true}
		}
		if graphics && !q.hasGraphics {
			q.Graphics, q.hasGraphics = uint32(i), true
		}
		if canPresent && !q.hasPresent {
			q.Present, q.hasPresent = uint32(i), true
		}
	}
	return q
}

// FindQueueFamilies queries gpu for a graphics family and a family that can present to surface.
func FindQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) QueueFamilies {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	flags := make([]vk.QueueFlags, count)
	present := make([]bool, count)
	for i := range props {
		props[i].Deref()
		flags[i] = props[i].QueueFlags
		var supported vk.Bool32
		ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), surface, &supported)
		if err := NewError(ret); err != nil {
			Logger().Warn("surface support query failed", "family", i, "err", err)
			continue
		}
		present[i] = supported.B()
	}
	return selectFamilies(flags, present)
}

// queueCreateInfos requests one queue per distinct family.
func (q QueueFamilies) queueCreateInfos() []vk.DeviceQueueCreateInfo {
	families := q.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
