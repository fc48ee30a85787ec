package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Binding slots of the texture binding set.
const (
	TextureBinding = 0
	SamplerBinding = 1
)

// bindingLayoutBindings puts the sampled image at binding 0 and the sampler at
// binding 1, both visible to the fragment stage.
func bindingLayoutBindings() []vk.DescriptorSetLayoutBinding {
	stage := vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         TextureBinding,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: 1,
			StageFlags:      stage,
		},
		{
			Binding:         SamplerBinding,
			DescriptorType:  vk.DescriptorTypeSampler,
			DescriptorCount: 1,
			StageFlags:      stage,
		},
	}
}

// Resources holds the immutable GPU data a frame draws with: one mesh and an
// optional texture exposed through a binding set.
type Resources struct {
	device *CoreDevice
	pool   *CorePool

	vertices    *CoreBuffer
	indices     *CoreBuffer
	vertexCount uint32
	indexCount  uint32

	texture        *Texture
	bindingLayout  vk.DescriptorSetLayout
	descriptorPool vk.DescriptorPool
	bindingSet     vk.DescriptorSet
}

func NewResources(device *CoreDevice, pool *CorePool) *Resources {
	return &Resources{device: device, pool: pool}
}

// UploadMesh copies the mesh into device local vertex and index buffers.
func (r *Resources) UploadMesh(m *Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	vertices, err := uploadBuffer(r.device, r.pool, float32Bytes(m.Vertices), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	var indices *CoreBuffer
	if m.Indexed() {
		if indices, err = uploadBuffer(r.device, r.pool, uint16Bytes(m.Indices), vk.BufferUsageIndexBufferBit); err != nil {
			vertices.Destroy()
			return fmt.Errorf("index buffer: %w", err)
		}
	}

	r.destroyMesh()
	r.vertices, r.indices = vertices, indices
	r.vertexCount, r.indexCount = m.VertexCount(), m.IndexCount()
	Logger().Debug("mesh uploaded", "vertices", r.vertexCount, "indices", r.indexCount)
	return nil
}

// UploadTexture creates an sRGB texture of exactly width x height from RGBA8
// pixels and the binding set that exposes it to shaders.
func (r *Resources) UploadTexture(pixels []byte, width, height int) error {
	if err := checkPixels(pixels, width, height); err != nil {
		return err
	}
	tex, err := newTexture(r.device, r.pool, pixels, uint32(width), uint32(height))
	if err != nil {
		return err
	}
	r.destroyTexture()
	r.texture = tex
	if err := r.createBindingSet(); err != nil {
		r.destroyTexture()
		return err
	}
	Logger().Debug("texture uploaded", "width", width, "height", height)
	return nil
}

func (r *Resources) createBindingSet() error {
	dev := r.device.Handle()
	bindings := bindingLayoutBindings()
	ret := vk.CreateDescriptorSetLayout(dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &r.bindingLayout)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("create binding layout: %w", err)
	}

	ret = vk.CreateDescriptorPool(dev, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeSampledImage, DescriptorCount: 1},
			{Type: vk.DescriptorTypeSampler, DescriptorCount: 1},
		},
	}, nil, &r.descriptorPool)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("create descriptor pool: %w", err)
	}

	ret = vk.AllocateDescriptorSets(dev, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     r.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{r.bindingLayout},
	}, &r.bindingSet)
	if err := NewError(ret); err != nil {
		return fmt.Errorf("allocate binding set: %w", err)
	}

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          r.bindingSet,
			DstBinding:      TextureBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageView:   r.texture.View(),
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          r.bindingSet,
			DstBinding:      SamplerBinding,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler: r.texture.Sampler(),
			}},
		},
	}
	vk.UpdateDescriptorSets(dev, uint32(len(writes)), writes, 0, nil)
	return nil
}

// BindingLayout is the layout pipelines must be built against; false when no texture was uploaded.
func (r *Resources) BindingLayout() (vk.DescriptorSetLayout, bool) {
	return r.bindingLayout, r.texture != nil
}

// BindingSet is the texture binding set; false when no texture was uploaded.
func (r *Resources) BindingSet() (vk.DescriptorSet, bool) {
	return r.bindingSet, r.texture != nil
}

func (r *Resources) VertexBuffer() vk.Buffer {
	if r.vertices == nil {
		return vk.NullBuffer
	}
	return r.vertices.Handle()
}

func (r *Resources) IndexBuffer() (vk.Buffer, bool) {
	if r.indices == nil {
		return vk.NullBuffer, false
	}
	return r.indices.Handle(), true
}

func (r *Resources) VertexCount() uint32 { return r.vertexCount }

func (r *Resources) IndexCount() uint32 { return r.indexCount }

func (r *Resources) destroyMesh() {
	if r.vertices != nil {
		r.vertices.Destroy()
		r.vertices = nil
	}
	if r.indices != nil {
		r.indices.Destroy()
		r.indices = nil
	}
	r.vertexCount, r.indexCount = 0, 0
}

func (r *Resources) destroyTexture() {
	dev := r.device.Handle()
	if r.descriptorPool != vk.NullDescriptorPool {
		// frees the binding set with it
		vk.DestroyDescriptorPool(dev, r.descriptorPool, nil)
		r.descriptorPool = vk.NullDescriptorPool
	}
	if r.bindingLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(dev, r.bindingLayout, nil)
		r.bindingLayout = vk.NullDescriptorSetLayout
	}
	if r.texture != nil {
		r.texture.Destroy()
		r.texture = nil
	}
}

// Destroy releases every buffer, image and binding object.
func (r *Resources) Destroy() {
	if r.device == nil {
		return
	}
	r.device.WaitIdle()
	r.destroyMesh()
	r.destroyTexture()
}
