package vkmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestPositionTexCoordsLayout(t *testing.T) {
	l := PositionTexCoords()
	require.NoError(t, l.Validate())
	assert.EqualValues(t, 20, l.Stride())
	assert.Equal(t, 5, l.Floats())

	b := l.BindingDescription()
	assert.EqualValues(t, 0, b.Binding)
	assert.EqualValues(t, 20, b.Stride)
	assert.Equal(t, vk.VertexInputRateVertex, b.InputRate)

	attrs := l.AttributeDescriptions()
	require.Len(t, attrs, 2)
	assert.Equal(t, vk.FormatR32g32b32Sfloat, attrs[0].Format)
	assert.EqualValues(t, 0, attrs[0].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[1].Format)
	assert.EqualValues(t, 1, attrs[1].Location)
	assert.EqualValues(t, 12, attrs[1].Offset)
}

func TestPositionColorLayout(t *testing.T) {
	l := PositionColor()
	require.NoError(t, l.Validate())
	assert.EqualValues(t, 24, l.Stride())
	assert.Equal(t, 6, l.Floats())
}

func TestVertexLayoutValidate(t *testing.T) {
	tests := []struct {
		name   string
		layout VertexLayout
	}{
		{"empty", VertexLayout{}},
		{"unknown format", VertexLayout{Attributes: []VertexAttribute{{Location: 0, Format: 0}}}},
		{"misaligned", VertexLayout{Attributes: []VertexAttribute{{Location: 0, Format: Float32, Offset: 2}}}},
		{"overlap", VertexLayout{Attributes: []VertexAttribute{
			{Location: 0, Format: Float32x3, Offset: 0},
			{Location: 1, Format: Float32x2, Offset: 8},
		}}},
		{"duplicate location", VertexLayout{Attributes: []VertexAttribute{
			{Location: 0, Format: Float32x3, Offset: 0},
			{Location: 0, Format: Float32x2, Offset: 12},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.layout.Validate(), ErrInvalidLayout)
		})
	}
}

func TestVertexFormat(t *testing.T) {
	assert.EqualValues(t, 16, Float32x4.Size())
	assert.Equal(t, vk.FormatR32Sfloat, Float32.VkFormat())
	assert.Equal(t, "float32x2", Float32x2.String())
	assert.Equal(t, vk.FormatUndefined, VertexFormat(9).VkFormat())
}
