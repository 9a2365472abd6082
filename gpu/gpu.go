//go:build !nogpu

// Package gpu registers the hardware warp renderer.
//
// Import this package to render warped meshes on the GPU via wgpu/hal.
// The shared Vulkan device opens when the first renderer is created; if no
// GPU is reachable, registration still succeeds and images fall back to
// the software path.
//
// Usage:
//
//	import _ "github.com/gogpu/warp/gpu" // enable GPU rendering
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/warp"
	gpuimpl "github.com/gogpu/warp/internal/gpu"
)

func init() {
	warp.RegisterRenderer(func() (warp.Renderer, error) {
		r, err := gpuimpl.NewRenderer()
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}

// SetDeviceProvider switches the shared warp device to one provided by a
// host application (e.g. a gogpu window), avoiding a second GPU instance.
// The provider must also implement gpucontext.HalProvider so the raw
// hal.Device and hal.Queue are reachable.
//
// Call before the first render; renderers created earlier keep working
// but their compiled pipelines are rebuilt on the new device.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return gpuimpl.AdoptDevice(provider)
}

// ReleaseDevice tears down the shared device and compiled pipelines. Only
// needed by hosts that manage GPU lifetime explicitly; renders after this
// reopen a device on demand.
func ReleaseDevice() {
	gpuimpl.ReleaseDevice()
}
