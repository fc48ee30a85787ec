package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// DefaultValidationLayers are enabled when validation is requested and the loader has them.
var DefaultValidationLayers = []string{
	"VK_LAYER_KHRONOS_validation",
}

// CoreInstance is the Vulkan instance plus the extension and layer sets it was created with.
type CoreInstance struct {
	handle     vk.Instance
	extensions *ExtensionSet
	layers     *ExtensionSet
}

// NewCoreInstance creates an instance with the window system's required extensions.
// Validation layers are best effort: missing ones are logged and skipped.
func NewCoreInstance(name string, required []string, validation bool) (*CoreInstance, error) {
	available, err := InstanceExtensions()
	if err != nil {
		return nil, fmt.Errorf("enumerate instance extensions: %w", err)
	}
	core := &CoreInstance{
		extensions: NewExtensionSet(available, required, platformInstanceExtensions()),
		layers:     NewExtensionSet(nil, nil, nil),
	}
	if ok, missing := core.extensions.HasRequired(); !ok {
		return nil, fmt.Errorf("missing instance extensions %q", missing)
	}

	if validation {
		layers, err := ValidationLayers()
		if err != nil {
			return nil, fmt.Errorf("enumerate validation layers: %w", err)
		}
		core.layers = NewExtensionSet(layers, nil, DefaultValidationLayers)
		if ok, missing := core.layers.HasWanted(); !ok {
			Logger().Warn("validation layers unavailable", "missing", missing)
		}
	}

	exts := core.extensions.Enabled()
	layers := core.layers.Enabled()
	info := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: platformInstanceFlags(exts),
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   safeString(name),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PEngineName:        "vkmesh\x00",
			EngineVersion:      vk.MakeVersion(1, 0, 0),
			ApiVersion:         vk.ApiVersion10,
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var instance vk.Instance
	if err := NewError(vk.CreateInstance(&info, nil, &instance)); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, fmt.Errorf("load instance functions: %w", err)
	}
	core.handle = instance
	Logger().Debug("instance created", "extensions", len(exts), "layers", len(layers))
	return core, nil
}

func (c *CoreInstance) Handle() vk.Instance {
	return c.handle
}

// Layers are the validation layers actually enabled, reused for the device.
func (c *CoreInstance) Layers() []string {
	return c.layers.Enabled()
}

func (c *CoreInstance) Destroy() {
	if c.handle != nil {
		vk.DestroyInstance(c.handle, nil)
		c.handle = nil
	}
}
