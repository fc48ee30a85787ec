package vkmesh

import "fmt"

// Mesh is the static draw data uploaded once at startup.
// Vertices are interleaved according to Layout; Indices are optional.
type Mesh struct {
	Vertices []float32
	Indices  []uint16
	Layout   VertexLayout
}

func (m *Mesh) VertexCount() uint32 {
	n := m.Layout.Floats()
	if n == 0 {
		return 0
	}
	return uint32(len(m.Vertices) / n)
}

func (m *Mesh) IndexCount() uint32 { return uint32(len(m.Indices)) }

func (m *Mesh) Indexed() bool { return len(m.Indices) > 0 }

// DrawCount is the number of vertices a full draw of the mesh covers.
func (m *Mesh) DrawCount() uint32 {
	if m.Indexed() {
		return m.IndexCount()
	}
	return m.VertexCount()
}

// Validate rejects meshes that cannot be drawn as a triangle list.
func (m *Mesh) Validate() error {
	if err := m.Layout.Validate(); err != nil {
		return err
	}
	floats := m.Layout.Floats()
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: no vertices", ErrInvalidMesh)
	}
	if len(m.Vertices)%floats != 0 {
		return fmt.Errorf("%w: %d floats is not a multiple of the %d-float vertex", ErrInvalidMesh, len(m.Vertices), floats)
	}
	if m.DrawCount()%3 != 0 {
		return fmt.Errorf("%w: %d vertices do not form whole triangles", ErrInvalidMesh, m.DrawCount())
	}
	count := m.VertexCount()
	for i, idx := range m.Indices {
		if uint32(idx) >= count {
			return fmt.Errorf("%w: index %d at %d out of range for %d vertices", ErrInvalidMesh, idx, i, count)
		}
	}
	return nil
}

var pentagonPositions = [5][3]float32{
	{-0.0868241, 0.49240386, 0.0},
	{-0.49513406, 0.06958647, 0.0},
	{-0.21918549, -0.44939706, 0.0},
	{0.35966998, -0.3473291, 0.0},
	{0.44147372, 0.2347359, 0.0},
}

var pentagonIndices = []uint16{
	0, 1, 4,
	1, 2, 4,
	2, 3, 4,
}

// Pentagon is the textured five vertex, nine index demo mesh.
func Pentagon() *Mesh {
	m := &Mesh{Layout: PositionTexCoords(), Indices: append([]uint16(nil), pentagonIndices...)}
	for _, p := range pentagonPositions {
		// texture space is the position shifted into [0,1]
		m.Vertices = append(m.Vertices, p[0], p[1], p[2], p[0]+0.5, p[1]+0.5)
	}
	return m
}

// ColoredPentagon is the same outline with red, green and blue vertices.
func ColoredPentagon() *Mesh {
	colors := [3][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	m := &Mesh{Layout: PositionColor(), Indices: append([]uint16(nil), pentagonIndices...)}
	for i, p := range pentagonPositions {
		c := colors[i%3]
		m.Vertices = append(m.Vertices, p[0], p[1], p[2], c[0], c[1], c[2])
	}
	return m
}
