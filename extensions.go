package vkmesh

import (
	vk "github.com/vulkan-go/vulkan"
)

// SwapchainExtension is the device extension every presenting adapter must expose.
const SwapchainExtension = vk.KhrSwapchainExtensionName

// ExtensionSet resolves required and optional names against what a platform reports.
// Required names that are absent make the set unusable; wanted names are
// enabled only when available.
type ExtensionSet struct {
	wanted   []string
	required []string
	actual   []string
}

func NewExtensionSet(actual, required, wanted []string) *ExtensionSet {
	return &ExtensionSet{
		wanted:   safeStrings(wanted),
		required: safeStrings(required),
		actual:   safeStrings(actual),
	}
}

func (e *ExtensionSet) has(name string) bool {
	for _, act := range e.actual {
		if act == name {
			return true
		}
	}
	return false
}

// HasRequired reports whether every required name is available, listing the missing ones.
func (e *ExtensionSet) HasRequired() (bool, []string) {
	var missing []string
	for _, req := range e.required {
		if !e.has(req) {
			missing = append(missing, req)
		}
	}
	return len(missing) == 0, missing
}

// HasWanted reports whether every optional name is available, listing the missing ones.
func (e *ExtensionSet) HasWanted() (bool, []string) {
	var missing []string
	for _, want := range e.wanted {
		if !e.has(want) {
			missing = append(missing, want)
		}
	}
	return len(missing) == 0, missing
}

// Enabled is the list to hand to Vulkan: all required names plus the available wanted ones.
func (e *ExtensionSet) Enabled() []string {
	out := append([]string(nil), e.required...)
	for _, want := range e.wanted {
		if !e.has(want) {
			continue
		}
		dup := false
		for _, name := range out {
			if name == want {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, want)
		}
	}
	return out
}

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(NewError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(NewError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// findMemoryType returns the first memory type allowed by typeFilter that has all properties.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, bool) {
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		if typeFilter&(1<<i) == 0 {
			continue
		}
		memType := props.MemoryTypes[i]
		memType.Deref()
		if memType.PropertyFlags&properties == properties {
			return i, true
		}
	}
	return 0, false
}
