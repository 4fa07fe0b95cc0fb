//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target runs when mage is invoked without arguments.
var Default = Build

// Build compiles the wordforge binary.
func Build() error {
	fmt.Println("Building wordforge...")
	return sh.RunV("go", "build", "-o", filepath.Join("bin", "wordforge"), "./cmd/wordforge")
}

// Install builds and installs the binary into GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	fmt.Println("Installing wordforge...")
	return sh.RunV("go", "install", "./cmd/wordforge")
}

// Test runs all tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	fmt.Println("Vetting...")
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning...")
	return os.RemoveAll("bin")
}
