package vkmesh

import (
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Vulkan expects NUL terminated names.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// checkExisting returns the required names that are actually available,
// plus how many were missing.
func checkExisting(actual, required []string) (existing []string, missing int) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[safeString(name)] = struct{}{}
	}
	for _, name := range required {
		if _, ok := have[safeString(name)]; ok {
			existing = append(existing, safeString(name))
		} else {
			missing++
		}
	}
	return existing, missing
}

// sliceUint32 repacks SPIR-V bytes into the word slice vk.ShaderModuleCreateInfo wants.
func sliceUint32(data []byte) []uint32 {
	buf := make([]uint32, len(data)/4)
	if len(buf) == 0 {
		return buf
	}
	vk.Memcopy(unsafe.Pointer(&buf[0]), data[:len(buf)*4])
	return buf
}

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uint16Bytes(v []uint16) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*2)
}
