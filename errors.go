package vkmesh

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrNoAdapter is returned when no physical device can render to the window surface.
	ErrNoAdapter = errors.New("vkmesh: no compatible GPU adapter")
	// ErrSurfaceLost reports a swapchain that must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("vkmesh: surface lost")
	// ErrOutOfMemory reports host or device memory exhaustion during a frame.
	ErrOutOfMemory = errors.New("vkmesh: out of memory")
	// ErrTerminated is returned by RenderFrame once the engine reached Terminating.
	ErrTerminated = errors.New("vkmesh: engine terminated")

	ErrPixelSize     = errors.New("vkmesh: pixel byte length does not match width*height*4")
	ErrEmptyRegistry = errors.New("vkmesh: pipeline registry is empty")
	ErrInvalidMesh   = errors.New("vkmesh: invalid mesh")
	ErrInvalidLayout = errors.New("vkmesh: invalid vertex layout")
	ErrInvalidShader = errors.New("vkmesh: invalid shader module")
)

// VulkanError carries the raw result of a failed Vulkan call.
type VulkanError struct {
	Result vk.Result
	Caller string
}

func (e *VulkanError) Error() string {
	msg := "non-success result"
	if err := vk.Error(e.Result); err != nil {
		msg = err.Error()
	}
	if e.Caller == "" {
		return fmt.Sprintf("vulkan error: %s (%d)", msg, e.Result)
	}
	return fmt.Sprintf("vulkan error: %s (%d) on %s", msg, e.Result, e.Caller)
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError wraps a non-success result, nil otherwise.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	e := &VulkanError{Result: ret}
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			e.Caller = fn.Name()
		}
	}
	return e
}

// ResultOf digs the vk.Result out of an error chain.
func ResultOf(err error) (vk.Result, bool) {
	var ve *VulkanError
	if errors.As(err, &ve) {
		return ve.Result, true
	}
	return vk.Success, false
}

// FrameErrorKind is the recovery class of a frame acquisition or presentation failure.
type FrameErrorKind int

const (
	FrameOK FrameErrorKind = iota
	FrameLost
	FrameOutOfMemory
	FrameTransient
)

func (k FrameErrorKind) String() string {
	switch k {
	case FrameOK:
		return "ok"
	case FrameLost:
		return "lost"
	case FrameOutOfMemory:
		return "out-of-memory"
	default:
		return "transient"
	}
}

// ClassifyResult maps a swapchain result to its recovery class.
// Suboptimal still hands out a usable image and counts as success.
func ClassifyResult(ret vk.Result) FrameErrorKind {
	switch ret {
	case vk.Success, vk.Suboptimal:
		return FrameOK
	case vk.ErrorSurfaceLost, vk.ErrorOutOfDate:
		return FrameLost
	case vk.ErrorOutOfHostMemory, vk.ErrorOutOfDeviceMemory:
		return FrameOutOfMemory
	default:
		return FrameTransient
	}
}

// Classify reports the recovery class of an error returned by Acquire or Present.
func Classify(err error) FrameErrorKind {
	switch {
	case err == nil:
		return FrameOK
	case errors.Is(err, ErrSurfaceLost):
		return FrameLost
	case errors.Is(err, ErrOutOfMemory):
		return FrameOutOfMemory
	}
	if ret, ok := ResultOf(err); ok {
		return ClassifyResult(ret)
	}
	return FrameTransient
}

// frameError turns a swapchain result into an error that Classify understands.
func frameError(ret vk.Result) error {
	switch ClassifyResult(ret) {
	case FrameOK:
		return nil
	case FrameLost:
		return fmt.Errorf("%w: %w", ErrSurfaceLost, &VulkanError{Result: ret})
	case FrameOutOfMemory:
		return fmt.Errorf("%w: %w", ErrOutOfMemory, &VulkanError{Result: ret})
	default:
		return &VulkanError{Result: ret}
	}
}

// Fatal logs err and exits the process after running finalizers.
// Only the executable calls it; library code returns errors.
func Fatal(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	Logger().Error("fatal", "err", err)
	fmt.Fprintln(os.Stderr, "vkmesh:", err)
	os.Exit(1)
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}
