package vkmesh

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// VertexFormat is the element type of a single vertex attribute.
type VertexFormat int

const (
	Float32 VertexFormat = iota + 1
	Float32x2
	Float32x3
	Float32x4
)

// Components is the number of float32 values the attribute occupies.
func (f VertexFormat) Components() int {
	switch f {
	case Float32:
		return 1
	case Float32x2:
		return 2
	case Float32x3:
		return 3
	case Float32x4:
		return 4
	}
	return 0
}

// Size is the attribute size in bytes.
func (f VertexFormat) Size() uint32 {
	return uint32(f.Components()) * 4
}

func (f VertexFormat) VkFormat() vk.Format {
	switch f {
	case Float32:
		return vk.FormatR32Sfloat
	case Float32x2:
		return vk.FormatR32g32Sfloat
	case Float32x3:
		return vk.FormatR32g32b32Sfloat
	case Float32x4:
		return vk.FormatR32g32b32a32Sfloat
	}
	return vk.FormatUndefined
}

func (f VertexFormat) String() string {
	switch f {
	case Float32:
		return "float32"
	case Float32x2:
		return "float32x2"
	case Float32x3:
		return "float32x3"
	case Float32x4:
		return "float32x4"
	}
	return fmt.Sprintf("VertexFormat(%d)", int(f))
}

// VertexAttribute maps bytes at Offset within a vertex to shader input Location.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint32
}

// VertexLayout describes one interleaved vertex buffer bound at slot 0.
type VertexLayout struct {
	Attributes []VertexAttribute
}

// PositionTexCoords is position (3 floats) followed by texture coordinates (2 floats).
func PositionTexCoords() VertexLayout {
	return VertexLayout{Attributes: []VertexAttribute{
		{Location: 0, Format: Float32x3, Offset: 0},
		{Location: 1, Format: Float32x2, Offset: Float32x3.Size()},
	}}
}

// PositionColor is position (3 floats) followed by an RGB color (3 floats).
func PositionColor() VertexLayout {
	return VertexLayout{Attributes: []VertexAttribute{
		{Location: 0, Format: Float32x3, Offset: 0},
		{Location: 1, Format: Float32x3, Offset: Float32x3.Size()},
	}}
}

// Stride is the byte distance between consecutive vertices.
func (l VertexLayout) Stride() uint32 {
	var end uint32
	for _, a := range l.Attributes {
		if e := a.Offset + a.Format.Size(); e > end {
			end = e
		}
	}
	return end
}

// Floats is the number of float32 values per vertex.
func (l VertexLayout) Floats() int {
	return int(l.Stride() / 4)
}

// Validate checks that attributes are ordered, tightly described and non-overlapping.
func (l VertexLayout) Validate() error {
	if len(l.Attributes) == 0 {
		return fmt.Errorf("%w: no attributes", ErrInvalidLayout)
	}
	var next uint32
	seen := make(map[uint32]bool, len(l.Attributes))
	for i, a := range l.Attributes {
		if a.Format.Components() == 0 {
			return fmt.Errorf("%w: attribute %d has unknown format", ErrInvalidLayout, i)
		}
		if a.Offset%4 != 0 {
			return fmt.Errorf("%w: attribute %d offset %d not float aligned", ErrInvalidLayout, i, a.Offset)
		}
		if a.Offset < next {
			return fmt.Errorf("%w: attribute %d at offset %d overlaps previous attribute", ErrInvalidLayout, i, a.Offset)
		}
		if seen[a.Location] {
			return fmt.Errorf("%w: location %d used twice", ErrInvalidLayout, a.Location)
		}
		seen[a.Location] = true
		next = a.Offset + a.Format.Size()
	}
	return nil
}

func (l VertexLayout) BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    l.Stride(),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (l VertexLayout) AttributeDescriptions() []vk.VertexInputAttributeDescription {
	out := make([]vk.VertexInputAttributeDescription, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		out = append(out, vk.VertexInputAttributeDescription{
			Binding:  0,
			Location: a.Location,
			Format:   a.Format.VkFormat(),
			Offset:   a.Offset,
		})
	}
	return out
}
