package vulkan

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prisma/engine/core"
)

/**
 * @brief Headless Vulkan bootstrap: loader, instance, physical device and a
 * single-queue logical device. Enough for the target backing and the
 * capability oracle; presentation belongs to whoever owns the window.
 */
type Context struct {
	Instance vk.Instance
	Device   *VulkanDevice

	graphicsQueueIndex uint32
}

func NewContext(applicationName string) (*Context, error) {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize the Vulkan loader: %s", err.Error())
		return nil, err
	}

	ctx := &Context{}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(applicationName),
		PEngineName:        VulkanSafeString("Prisma"),
	}

	requiredExtensions := []string{}
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(requiredExtensions),
	}
	if runtime.GOOS == "darwin" {
		createInfo.Flags |= 1
	}

	if res := vk.CreateInstance(&createInfo, nil, &ctx.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create the Vulkan instance, code %d", res)
		core.LogError(err.Error())
		return nil, err
	}
	if err := vk.InitInstance(ctx.Instance); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.LogInfo("Vulkan instance created")

	physical, queueIndex, err := ctx.selectPhysicalDevice()
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	ctx.graphicsQueueIndex = queueIndex

	logical, err := createLogicalDevice(physical, queueIndex)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}

	device, err := NewVulkanDevice(physical, logical)
	if err != nil {
		vk.DestroyDevice(logical, nil)
		ctx.Destroy()
		return nil, err
	}
	ctx.Device = device
	return ctx, nil
}

// selectPhysicalDevice picks the first device with a graphics queue family,
// preferring discrete GPUs.
func (ctx *Context) selectPhysicalDevice() (vk.PhysicalDevice, uint32, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(ctx.Instance, &count, nil); res != vk.Success || count == 0 {
		return nil, 0, fmt.Errorf("no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(ctx.Instance, &count, devices); res != vk.Success {
		return nil, 0, fmt.Errorf("failed to enumerate physical devices, code %d", res)
	}

	var fallback vk.PhysicalDevice
	var fallbackQueue uint32
	for _, candidate := range devices {
		queueIndex, ok := graphicsQueueFamily(candidate)
		if !ok {
			continue
		}

		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(candidate, &properties)
		properties.Deref()

		if properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			core.LogInfo("selected discrete GPU '%s'", vk.ToString(properties.DeviceName[:]))
			return candidate, queueIndex, nil
		}
		if fallback == nil {
			fallback = candidate
			fallbackQueue = queueIndex
		}
	}
	if fallback == nil {
		return nil, 0, fmt.Errorf("no physical device exposes a graphics queue")
	}
	return fallback, fallbackQueue, nil
}

func graphicsQueueFamily(device vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)
	for i := uint32(0); i < count; i++ {
		families[i].Deref()
		if vk.QueueFlagBits(families[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			return i, true
		}
	}
	return 0, false
}

func createLogicalDevice(physical vk.PhysicalDevice, queueIndex uint32) (vk.Device, error) {
	queuePriority := []float32{1.0}
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueIndex,
		QueueCount:       1,
		PQueuePriorities: queuePriority,
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueCreateInfo},
	}

	var logical vk.Device
	if res := vk.CreateDevice(physical, &deviceCreateInfo, nil, &logical); res != vk.Success {
		err := fmt.Errorf("failed to create the logical device, code %d", res)
		core.LogError(err.Error())
		return nil, err
	}
	return logical, nil
}

func (ctx *Context) Destroy() {
	if ctx.Device != nil && ctx.Device.LogicalDevice != nil {
		vk.DestroyDevice(ctx.Device.LogicalDevice, nil)
		ctx.Device = nil
	}
	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, nil)
		ctx.Instance = nil
	}
}

// VulkanSafeString null-terminates a Go string for the Vulkan C side.
func VulkanSafeString(s string) string {
	return s + "\x00"
}

func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = VulkanSafeString(s)
	}
	return out
}
