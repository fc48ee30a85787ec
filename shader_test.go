package vkmesh

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func spirvHeader() []byte {
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code, spirvMagic)
	binary.LittleEndian.PutUint32(code[4:], 0x00010000)
	return code
}

func TestValidateSPIRV(t *testing.T) {
	assert.NoError(t, ValidateSPIRV(spirvHeader()))
	assert.ErrorIs(t, ValidateSPIRV(nil), ErrInvalidShader)
	assert.ErrorIs(t, ValidateSPIRV(spirvHeader()[:18]), ErrInvalidShader)
	assert.ErrorIs(t, ValidateSPIRV([]byte{1, 2, 3, 4}), ErrInvalidShader)
}

func TestLoadShader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "ok.spv")
	require.NoError(t, os.WriteFile(good, spirvHeader(), 0o644))
	code, err := LoadShader(good)
	require.NoError(t, err)
	assert.Len(t, code, 20)

	bad := filepath.Join(dir, "bad.spv")
	require.NoError(t, os.WriteFile(bad, []byte("#version 450\n"), 0o644))
	_, err = LoadShader(bad)
	assert.ErrorIs(t, err, ErrInvalidShader)

	_, err = LoadShader(filepath.Join(dir, "missing.spv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "go generate ./shaders")
}

func TestLoadProgramMissingStage(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "a.vert.spv")
	require.NoError(t, os.WriteFile(vert, spirvHeader(), 0o644))

	_, err := LoadProgram(nil, PipelineConfig{
		Name:     "broken",
		Vertex:   vert,
		Fragment: filepath.Join(dir, "missing.frag.spv"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSliceUint32(t *testing.T) {
	words := sliceUint32(spirvHeader())
	require.Len(t, words, 5)
	assert.EqualValues(t, spirvMagic, words[0])
	assert.Empty(t, sliceUint32(nil))
}

func TestStageInfo(t *testing.T) {
	s := &CoreShader{stage: vk.ShaderStageFragmentBit, entry: "main"}
	info := s.stageInfo()
	assert.Equal(t, vk.ShaderStageFragmentBit, info.Stage)
	assert.Equal(t, "main\x00", info.PName)
}
