package main

import (
	"runtime"

	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"

	"github.com/voxtrace/voxtrace/render"
)

func init() {
	// SDL and the Vulkan surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if level, err := log.ParseLevel(envy.Get("VOXTRACE_LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	renderer := render.New(render.FromEnv())
	if err := renderer.Run(); err != nil {
		log.Fatalf("%+v", err)
	}
}
