package vkmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPentagon(t *testing.T) {
	m := Pentagon()
	require.NoError(t, m.Validate())
	assert.EqualValues(t, 5, m.VertexCount())
	assert.EqualValues(t, 9, m.IndexCount())
	assert.True(t, m.Indexed())
	assert.EqualValues(t, 9, m.DrawCount())

	for i := uint32(0); i < m.VertexCount(); i++ {
		u, v := m.Vertices[i*5+3], m.Vertices[i*5+4]
		assert.True(t, u >= 0 && u <= 1, "u %f", u)
		assert.True(t, v >= 0 && v <= 1, "v %f", v)
	}
}

func TestColoredPentagon(t *testing.T) {
	m := ColoredPentagon()
	require.NoError(t, m.Validate())
	assert.EqualValues(t, 5, m.VertexCount())
	assert.Equal(t, []float32{1, 0, 0}, m.Vertices[3:6])
	assert.Equal(t, []float32{0, 1, 0}, m.Vertices[9:12])
}

func TestPentagonReturnsCopies(t *testing.T) {
	a := Pentagon()
	a.Indices[0] = 4
	assert.EqualValues(t, 0, Pentagon().Indices[0])
}

func TestMeshValidate(t *testing.T) {
	tri := []float32{
		0, 0, 0, 0, 0,
		1, 0, 0, 1, 0,
		0, 1, 0, 0, 1,
	}
	require.NoError(t, (&Mesh{Vertices: tri, Layout: PositionTexCoords()}).Validate())

	tests := []struct {
		name string
		mesh Mesh
	}{
		{"no vertices", Mesh{Layout: PositionTexCoords()}},
		{"ragged", Mesh{Vertices: tri[:14], Layout: PositionTexCoords()}},
		{"partial triangle", Mesh{Vertices: tri[:10], Layout: PositionTexCoords()}},
		{"index out of range", Mesh{Vertices: tri, Indices: []uint16{0, 1, 3}, Layout: PositionTexCoords()}},
		{"index count", Mesh{Vertices: tri, Indices: []uint16{0, 1}, Layout: PositionTexCoords()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.mesh.Validate(), ErrInvalidMesh)
		})
	}
	assert.ErrorIs(t, (&Mesh{Vertices: tri}).Validate(), ErrInvalidLayout)
}
