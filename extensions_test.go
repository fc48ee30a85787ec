package vkmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionSetRequired(t *testing.T) {
	set := NewExtensionSet(
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00"},
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		nil,
	)
	ok, missing := set.HasRequired()
	assert.True(t, ok)
	assert.Empty(t, missing)

	set = NewExtensionSet([]string{"VK_KHR_surface"}, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, nil)
	ok, missing = set.HasRequired()
	assert.False(t, ok)
	assert.Equal(t, []string{"VK_KHR_xcb_surface\x00"}, missing)
}

func TestExtensionSetEnabledSkipsMissingWanted(t *testing.T) {
	set := NewExtensionSet(
		[]string{"VK_KHR_surface", "VK_KHR_portability_enumeration"},
		[]string{"VK_KHR_surface"},
		[]string{"VK_KHR_portability_enumeration", "VK_EXT_debug_utils", "VK_KHR_surface"},
	)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_KHR_portability_enumeration\x00"}, set.Enabled())

	ok, missing := set.HasWanted()
	assert.False(t, ok)
	assert.Equal(t, []string{"VK_EXT_debug_utils\x00"}, missing)
}

func TestCheckExisting(t *testing.T) {
	existing, missing := checkExisting([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"b\x00"}, existing)
	assert.Equal(t, 1, missing)
}

func TestPlatformExtensions(t *testing.T) {
	old := PlatformOS
	defer func() { PlatformOS = old }()

	PlatformOS = "darwin"
	assert.Equal(t, []string{portabilityEnumeration}, platformInstanceExtensions())
	PlatformOS = "linux"
	assert.Empty(t, platformInstanceExtensions())

	assert.EqualValues(t, instanceCreateEnumeratePortability,
		platformInstanceFlags([]string{"VK_KHR_surface\x00", "VK_KHR_portability_enumeration\x00"}))
	assert.Zero(t, platformInstanceFlags([]string{"VK_KHR_surface\x00"}))

	assert.Equal(t, []string{"VK_KHR_portability_subset\x00"},
		platformDeviceExtensions([]string{"VK_KHR_swapchain", "VK_KHR_portability_subset"}))
	assert.Empty(t, platformDeviceExtensions([]string{"VK_KHR_swapchain"}))
}
