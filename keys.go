package vkmesh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var namedKeys = map[string]glfw.Key{
	"space":     glfw.KeySpace,
	"enter":     glfw.KeyEnter,
	"return":    glfw.KeyEnter,
	"tab":       glfw.KeyTab,
	"backspace": glfw.KeyBackspace,
	"right":     glfw.KeyRight,
	"left":      glfw.KeyLeft,
	"down":      glfw.KeyDown,
	"up":        glfw.KeyUp,
	"pageup":    glfw.KeyPageUp,
	"pagedown":  glfw.KeyPageDown,
}

// ParseKey maps a key name from the config ("space", "n", "7", "f5", "right")
// to a GLFW key. Escape is reserved for exiting and cannot be bound.
func ParseKey(name string) (glfw.Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if key, ok := namedKeys[n]; ok {
		return key, nil
	}
	if len(n) == 1 {
		switch c := n[0]; {
		case c >= 'a' && c <= 'z':
			return glfw.KeyA + glfw.Key(c-'a'), nil
		case c >= '0' && c <= '9':
			return glfw.Key0 + glfw.Key(c-'0'), nil
		}
	}
	if strings.HasPrefix(n, "f") {
		if i, err := strconv.Atoi(n[1:]); err == nil && i >= 1 && i <= 12 {
			return glfw.KeyF1 + glfw.Key(i-1), nil
		}
	}
	return glfw.KeyUnknown, fmt.Errorf("unknown key %q", name)
}
