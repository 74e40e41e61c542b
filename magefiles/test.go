//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the unit tests. None of them need a GPU or a display server.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "-count=1", "./engine/...", "./testbed/..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./engine/...", "./testbed/..."), withStream())
	return err
}
