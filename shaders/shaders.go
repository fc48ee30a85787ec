// Package shaders holds the GLSL sources of the demo pipelines. The SPIR-V
// blobs the host loads are produced with glslangValidator.
package shaders

//go:generate glslangValidator -V textured.vert -o textured.vert.spv
//go:generate glslangValidator -V textured.frag -o textured.frag.spv
//go:generate glslangValidator -V inverted.frag -o inverted.frag.spv
//go:generate glslangValidator -V colored.vert -o colored.vert.spv
//go:generate glslangValidator -V colored.frag -o colored.frag.spv
//go:generate glslangValidator -V gray.frag -o gray.frag.spv
