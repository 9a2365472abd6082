//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/warp"
)

// deviceState holds the process-wide GPU device shared by all warp
// renderer instances. Pipelines are device objects, so the program cache
// lives here too.
type deviceState struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	programs *ProgramCache

	// external is true when the device came from a host application via
	// AdoptDevice; shared resources are then never destroyed here.
	external bool
}

var (
	deviceMu sync.Mutex
	shared   *deviceState
)

// acquireDevice returns the shared device, opening one on first use.
// A failed open is not memoized: the next access retries, so a transient
// failure does not permanently disable GPU rendering.
func acquireDevice() (*deviceState, error) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if shared != nil {
		return shared, nil
	}

	state, err := openDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", warp.ErrRenderBackendUnavailable, err)
	}
	shared = state
	return shared, nil
}

// openDevice opens the preferred adapter on the Vulkan backend.
func openDevice() (*deviceState, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	warp.Logger().Info("warp GPU device opened", "adapter", selected.Info.Name)
	return &deviceState{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		programs: NewProgramCache(),
	}, nil
}

// AdoptDevice switches the shared device to one provided by the host
// application. The provider must expose HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue (the gpucontext HAL provider
// contract). Previously owned resources are destroyed; previously compiled
// programs are invalidated because pipelines belong to the old device.
func AdoptDevice(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("warp gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("warp gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("warp gpu: provider HalQueue is not hal.Queue")
	}

	deviceMu.Lock()
	defer deviceMu.Unlock()

	if shared != nil {
		shared.programs.Invalidate(shared.device)
		if !shared.external {
			shared.device.Destroy()
			if shared.instance != nil {
				shared.instance.Destroy()
			}
		}
	}
	shared = &deviceState{
		device:   device,
		queue:    queue,
		programs: NewProgramCache(),
		external: true,
	}
	warp.Logger().Info("warp GPU using shared host device")
	return nil
}

// currentDevice returns the shared device if one is open, without opening
// one. Used on teardown paths that must not trigger device creation.
func currentDevice() hal.Device {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if shared == nil {
		return nil
	}
	return shared.device
}

// ReleaseDevice destroys owned device resources and clears the program
// cache. The device and cache are process-wide and survive individual
// renderer lifetimes; this exists for hosts that tear down GPU state
// explicitly. Safe to call with no open device.
func ReleaseDevice() {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if shared == nil {
		return
	}
	shared.programs.Invalidate(shared.device)
	if !shared.external {
		shared.device.Destroy()
		if shared.instance != nil {
			shared.instance.Destroy()
		}
	}
	shared = nil
}
