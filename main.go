/*
Runs the camera demo on top of the engine package
*/
package main

import (
	"flag"
	"os"

	"github.com/spaghettifunk/showcase/engine"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/testbed"
)

func main() {
	configPath := flag.String("config", "showcase.toml", "path to the TOML configuration")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}

	if err := engine.Run(cfg, testbed.New); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}
