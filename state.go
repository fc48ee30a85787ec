package vkmesh

// Color is a linear RGBA clear color.
type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

func (c Color) float32s() []float32 {
	return []float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// EngineState is the frame engine's position in its state machine.
type EngineState int

const (
	// Ready means the surface is configured and a frame can be rendered.
	Ready EngineState = iota
	// Rendering holds an acquired image and an open recording.
	Rendering
	// Reconfiguring re-applies the surface configuration after a loss or resize.
	Reconfiguring
	// Terminating is terminal: no further frames are rendered.
	Terminating
)

func (s EngineState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Rendering:
		return "rendering"
	case Reconfiguring:
		return "reconfiguring"
	case Terminating:
		return "terminating"
	}
	return "unknown"
}

// FrameState is the per-session input the next frame is drawn from.
type FrameState struct {
	Width  uint32
	Height uint32
	Clear  Color
	Active int
}
