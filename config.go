package vkmesh

import (
	"fmt"
	"os"
	"strings"

	vk "github.com/vulkan-go/vulkan"
	"gopkg.in/yaml.v3"
)

const (
	MeshTextured = "textured"
	MeshColored  = "colored"

	DefaultEntryPoint      = "main"
	DefaultNextPipelineKey = "space"
)

// DefaultClearColor is the dark blue the frame is cleared to until the pointer moves.
var DefaultClearColor = Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// UnmarshalYAML fills channels missing from the document from DefaultClearColor.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	type channels Color
	merged := channels(DefaultClearColor)
	if err := value.Decode(&merged); err != nil {
		return err
	}
	*c = Color(merged)
	return nil
}

// Config is the on-disk description of a rendering session.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Validation bool             `yaml:"validation,omitempty"`
	Present    string           `yaml:"present,omitempty"`
	Mesh       string           `yaml:"mesh,omitempty"`
	Texture    string           `yaml:"texture,omitempty"`
	NextKey    string           `yaml:"nextPipelineKey,omitempty"`
	Clear      *Color           `yaml:"clear,omitempty"`
	Pipelines  []PipelineConfig `yaml:"pipelines"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// PipelineConfig names the SPIR-V pair compiled into one selectable pipeline.
type PipelineConfig struct {
	Name          string `yaml:"name"`
	Vertex        string `yaml:"vertex"`
	Fragment      string `yaml:"fragment"`
	VertexEntry   string `yaml:"vertexEntry,omitempty"`
	FragmentEntry string `yaml:"fragmentEntry,omitempty"`
}

func DefaultConfig() Config {
	c := Config{
		Window: WindowConfig{Title: "vkmesh", Width: 800, Height: 600},
		Pipelines: []PipelineConfig{
			{Name: "textured", Vertex: "shaders/textured.vert.spv", Fragment: "shaders/textured.frag.spv"},
			{Name: "inverted", Vertex: "shaders/textured.vert.spv", Fragment: "shaders/inverted.frag.spv"},
		},
	}
	c.normalize()
	return c
}

func (c *Config) normalize() {
	if c.Window.Title == "" {
		c.Window.Title = "vkmesh"
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 800
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 600
	}
	if c.Mesh == "" {
		c.Mesh = MeshTextured
	}
	c.Mesh = strings.ToLower(c.Mesh)
	if c.NextKey == "" {
		c.NextKey = DefaultNextPipelineKey
	}
	if c.Clear == nil {
		def := DefaultClearColor
		c.Clear = &def
	}
	for i := range c.Pipelines {
		p := &c.Pipelines[i]
		if p.VertexEntry == "" {
			p.VertexEntry = DefaultEntryPoint
		}
		if p.FragmentEntry == "" {
			p.FragmentEntry = DefaultEntryPoint
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("pipeline-%d", i)
		}
	}
}

// Validate rejects configurations that cannot start.
func (c *Config) Validate() error {
	if len(c.Pipelines) == 0 {
		return ErrEmptyRegistry
	}
	for i, p := range c.Pipelines {
		if p.Vertex == "" || p.Fragment == "" {
			return fmt.Errorf("pipeline %d (%s): vertex and fragment shaders are required", i, p.Name)
		}
	}
	switch c.Mesh {
	case MeshTextured, MeshColored:
	default:
		return fmt.Errorf("unknown mesh %q", c.Mesh)
	}
	if _, ok := presentModes[strings.ToLower(c.Present)]; c.Present != "" && !ok {
		return fmt.Errorf("unknown present mode %q", c.Present)
	}
	if _, err := ParseKey(c.NextKey); err != nil {
		return err
	}
	return nil
}

// ParseConfig decodes YAML data, fills unset fields with defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(data)
}

var presentModes = map[string]vk.PresentMode{
	"fifo":         vk.PresentModeFifo,
	"fifo-relaxed": vk.PresentModeFifoRelaxed,
	"mailbox":      vk.PresentModeMailbox,
	"immediate":    vk.PresentModeImmediate,
}

// PresentPreference returns the configured present mode, if any.
func (c *Config) PresentPreference() (vk.PresentMode, bool) {
	m, ok := presentModes[strings.ToLower(c.Present)]
	return m, ok
}

// MeshData builds the configured demo mesh.
func (c *Config) MeshData() *Mesh {
	if c.Mesh == MeshColored {
		return ColoredPentagon()
	}
	return Pentagon()
}

// Textured reports whether the configured mesh samples a texture.
func (c *Config) Textured() bool {
	return c.Mesh == MeshTextured
}
