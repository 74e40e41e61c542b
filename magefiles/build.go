//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads the modules and builds every package.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("mod", "download"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the showcase binary into bin/.
func (Build) Showcase() error {
	mg.Deps(Build.All)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/showcase", "."), withStream())
	return err
}
