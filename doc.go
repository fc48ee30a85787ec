// Package vkmesh is a small real-time rendering host on Vulkan and GLFW.
//
// A Core owns the GPU context for one window, the uploaded mesh and texture,
// an ordered registry of pipelines and the frame engine. The engine renders
// one frame per loop iteration: it acquires a swapchain image, records a
// single clearing render pass drawing the mesh with the active pipeline,
// submits it and presents. A lost surface is reconfigured and the frame
// skipped, running out of memory terminates the loop, and any other failure
// skips the frame.
//
// Window events reach the engine through a Bridge: Escape or closing the
// window exits, the configured key cycles pipelines, resizes reconfigure the
// surface and the pointer position tints the clear color.
package vkmesh
