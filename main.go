/*
This is an example of application that drives the frame scheduler:
a two-camera stack rendered headless against the no-op backend, with
a Vulkan device powering the target backing when one is available.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prisma/engine/config"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/platform"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
	"github.com/spaghettifunk/prisma/engine/renderer/vulkan"
	"github.com/spaghettifunk/prisma/engine/systems"
	"github.com/spaghettifunk/prisma/testbed"
)

func main() {
	configPath := flag.String("config", "pipeline.toml", "path to the pipeline configuration file")
	flag.Parse()

	const width, height = 1280, 720

	p, err := platform.New()
	if err != nil {
		panic(err)
	}
	if err := p.Startup("Prisma Testbed", width, height); err != nil {
		panic(err)
	}
	defer p.Shutdown()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogWarn("no usable pipeline config at '%s', using defaults", *configPath)
		cfg = config.DefaultPipelineConfig()
	}
	watcher, err := config.NewWatcher(*configPath, cfg)
	if err != nil {
		panic(err)
	}
	if err := watcher.Start(); err != nil {
		core.LogWarn("config hot-reload unavailable: %s", err.Error())
	} else {
		defer watcher.Close()
	}

	// A Vulkan device backs the transient targets when one exists; the demo
	// still runs headless against software bookkeeping otherwise.
	var backing metadata.TargetBacking
	var capabilities metadata.CapabilityOracle
	if ctx, err := vulkan.NewContext("Prisma Testbed"); err == nil {
		defer ctx.Destroy()
		backing = vulkan.NewTextureBacking(ctx.Device)
		capabilities = vulkan.NewDeviceCapabilities(ctx.Device)
	} else {
		core.LogWarn("no Vulkan device: %s; running on the software profile", err.Error())
		backing = testbed.NewSoftwareBacking()
		capabilities = testbed.DesktopProfile()
	}

	backend := testbed.NewNoopBackend()
	renderer, err := systems.NewRendererSystem(backend, backing, capabilities, width, height)
	if err != nil {
		panic(err)
	}
	defer renderer.Shutdown()

	game := testbed.NewTestGame()
	if err := game.Initialize(renderer, cfg, width, height); err != nil {
		panic(err)
	}

	core.EventRegister(core.EVENT_CODE_PIPELINE_CONFIG_RELOADED, func(context core.EventContext) {
		if reloaded, ok := context.Data.(*config.PipelineConfig); ok {
			if err := game.ApplyConfig(reloaded); err != nil {
				core.LogError("failed to apply reloaded config: %s", err.Error())
			}
		}
	})
	core.EventRegister(core.EVENT_CODE_RESIZED, func(context core.EventContext) {
		if extent, ok := context.Data.(*core.ResizeEvent); ok {
			game.OnResize(extent.Width, extent.Height)
		}
	})

	running := true
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, func(context core.EventContext) {
		running = false
	})

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	clock := core.Clock{}
	clock.Start()
	lastElapsed := 0.0

	for running && !p.ShouldClose() {
		p.PumpEvents()

		clock.Update()
		delta := clock.Elapsed - lastElapsed
		lastElapsed = clock.Elapsed

		packet := game.BuildPacket(delta)
		if err := renderer.DrawFrame(packet); err != nil {
			core.LogError("frame abandoned: %s", err.Error())
			break
		}

		metrics := renderer.Metrics()
		if metrics.FrameNumber%300 == 0 {
			core.LogInfo("frame %d: %d passes, %d target allocations, planned in %s",
				metrics.FrameNumber, metrics.PassCount, metrics.TargetAllocations, metrics.ScheduleDuration)
		}
	}
	core.LogInfo("shutting down")
}
