// Command vkmesh opens a window and draws a textured mesh with a set of
// selectable pipelines. Space cycles pipelines, the pointer tints the
// background and Escape quits.
//
// The configurations load SPIR-V shaders from shaders/, which are not checked
// in. Compile them once with glslangValidator on the PATH:
//
//	go generate ./shaders
//	go run ./cmd/vkmesh -config vkmesh.yaml
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/andewx/vkmesh"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func init() {
	// GLFW and the Vulkan surface calls must stay on the main thread.
	runtime.LockOSThread()

	flag.StringVar(&args.config, "config", "", "YAML configuration file")
	flag.BoolVar(&args.debug, "debug", false, "enable validation layers and debug logging")
}

var args struct {
	config string
	debug  bool
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if args.debug {
		level = slog.LevelDebug
	}
	vkmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := vkmesh.DefaultConfig()
	if args.config != "" {
		var err error
		if cfg, err = vkmesh.LoadConfig(args.config); err != nil {
			vkmesh.Fatal(err)
		}
	}
	if args.debug {
		cfg.Validation = true
	}

	vkmesh.Fatal(glfw.Init())
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	vkmesh.Fatal(err, glfw.Terminate)
	defer window.Destroy()

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	vkmesh.Fatal(vk.Init(), window.Destroy, glfw.Terminate)

	core, err := vkmesh.NewCore(cfg, window)
	vkmesh.Fatal(err, window.Destroy, glfw.Terminate)

	err = core.Run()
	core.Close()
	vkmesh.Fatal(err, window.Destroy, glfw.Terminate)
}
