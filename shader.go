package vkmesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

// ValidateSPIRV checks that code looks like a SPIR-V module: a non-empty whole
// number of 32-bit words starting with the magic number.
func ValidateSPIRV(code []byte) error {
	if len(code) == 0 || len(code)%4 != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of words", ErrInvalidShader, len(code))
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		return fmt.Errorf("%w: missing SPIR-V magic", ErrInvalidShader)
	}
	return nil
}

// LoadShader reads and validates a SPIR-V blob.
func LoadShader(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w (the shipped shaders are compiled with go generate ./shaders)", err)
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateSPIRV(code); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// CoreShader is one shader module bound to a pipeline stage and entry point.
type CoreShader struct {
	device vk.Device
	module vk.ShaderModule
	stage  vk.ShaderStageFlagBits
	entry  string
}

func NewCoreShader(device vk.Device, code []byte, stage vk.ShaderStageFlagBits, entry string) (*CoreShader, error) {
	if err := ValidateSPIRV(code); err != nil {
		return nil, err
	}
	if entry == "" {
		entry = DefaultEntryPoint
	}
	// Vulkan expects to receive uint32 words
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}
	var module vk.ShaderModule
	if err := NewError(vk.CreateShaderModule(device, &info, nil, &module)); err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	return &CoreShader{device: device, module: module, stage: stage, entry: entry}, nil
}

func (s *CoreShader) stageInfo() vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.stage,
		Module: s.module,
		PName:  safeString(s.entry),
	}
}

func (s *CoreShader) Destroy() {
	if s.module != vk.NullShaderModule {
		vk.DestroyShaderModule(s.device, s.module, nil)
		s.module = vk.NullShaderModule
	}
}

// ShaderProgram pairs the vertex and fragment stages of one pipeline.
type ShaderProgram struct {
	Name     string
	Vertex   *CoreShader
	Fragment *CoreShader
}

// LoadProgram loads both SPIR-V stages named by cfg.
func LoadProgram(device vk.Device, cfg PipelineConfig) (*ShaderProgram, error) {
	vert, err := LoadShader(cfg.Vertex)
	if err != nil {
		return nil, err
	}
	frag, err := LoadShader(cfg.Fragment)
	if err != nil {
		return nil, err
	}
	p := &ShaderProgram{Name: cfg.Name}
	if p.Vertex, err = NewCoreShader(device, vert, vk.ShaderStageVertexBit, cfg.VertexEntry); err != nil {
		return nil, fmt.Errorf("%s vertex: %w", cfg.Name, err)
	}
	if p.Fragment, err = NewCoreShader(device, frag, vk.ShaderStageFragmentBit, cfg.FragmentEntry); err != nil {
		p.Destroy()
		return nil, fmt.Errorf("%s fragment: %w", cfg.Name, err)
	}
	return p, nil
}

func (p *ShaderProgram) stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{p.Vertex.stageInfo(), p.Fragment.stageInfo()}
}

// Destroy releases the modules. Pipelines built from them stay valid.
func (p *ShaderProgram) Destroy() {
	if p.Vertex != nil {
		p.Vertex.Destroy()
	}
	if p.Fragment != nil {
		p.Fragment.Destroy()
	}
}
