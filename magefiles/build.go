//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds meshtool into bin/.
func (Build) Tool() error {
	fmt.Println("Building meshtool...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/meshtool", "./cmd/meshtool"), withStream())
	return err
}

// Vets and tests every package.
func Test() error {
	mg.Deps(Vet)
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs go vet on every package.
func Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Tidies go.mod and go.sum.
func Tidy() error {
	_, err := executeCmd("go", withArgs("mod", "tidy"))
	return err
}
