package vkmesh

import (
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

const (
	portabilityEnumeration = "VK_KHR_portability_enumeration"
	portabilitySubset      = "VK_KHR_portability_subset"

	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability = 0x00000001
)

// PlatformOS is the host OS as seen by the loader setup.
var PlatformOS = runtime.GOOS

// platformInstanceExtensions are optional instance extensions the host needs
// to see portability drivers such as MoltenVK.
func platformInstanceExtensions() []string {
	if PlatformOS == "darwin" {
		return []string{portabilityEnumeration}
	}
	return nil
}

// platformInstanceFlags enables portability enumeration when its extension is enabled.
func platformInstanceFlags(enabled []string) vk.InstanceCreateFlags {
	for _, name := range enabled {
		if name == safeString(portabilityEnumeration) {
			return vk.InstanceCreateFlags(instanceCreateEnumeratePortability)
		}
	}
	return 0
}

// platformDeviceExtensions returns the device extensions that must be enabled
// whenever the adapter exposes them.
func platformDeviceExtensions(available []string) []string {
	existing, _ := checkExisting(available, []string{portabilitySubset})
	return existing
}
