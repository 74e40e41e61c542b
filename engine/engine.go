package engine

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/vulkan"
	"github.com/spaghettifunk/showcase/engine/renderer/webgpu"
)

// NewBackend selects the GPU backend named in the config.
func NewBackend(cfg *ApplicationConfig) (renderer.Backend, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendNameVulkan, "":
		return vulkan.New(cfg.Name, cfg.Validation), nil
	case BackendNameWGPU:
		return webgpu.New(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// Run opens the window and drives init's demo until the window closes
// or the process is interrupted. It must be called from the main goroutine.
func Run(cfg *ApplicationConfig, init InitFunc) error {
	level, err := core.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	core.SetLogLevel(level)

	backend, err := NewBackend(cfg)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("starting %s with the %s backend", cfg.Name, backend.Type())

	loop, err := platform.NewEventLoop()
	if err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigCh:
			core.LogInfo("received %s", sig)
			loop.Interrupt()
		case <-done:
		}
	}()

	return loop.RunApp(NewApp(cfg, backend, init))
}
