//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed demo. SHOWCASE_CONFIG overrides the config path.
func (Run) Testbed() error {
	config := os.Getenv("SHOWCASE_CONFIG")
	if config == "" {
		config = "showcase.toml"
	}
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", config), withStream()); err != nil {
		return err
	}
	return nil
}
