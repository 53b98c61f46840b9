// +build never

package main

import (
	"flag"
	"os"

	module "github.com/tensorworks/go-build-helpers/pkg/module"
	validation "github.com/tensorworks/go-build-helpers/pkg/validation"
)

// Alias validation.ExitIfError() as check()
var check = validation.ExitIfError

// Builds the fsdump binary into ./bin (run with `go run build.go`)
func main() {

	// Parse our command-line flags
	doClean := flag.Bool("clean", false, "remove the bin directory instead of building")
	flag.Parse()

	// Locate the fsdump module from the working directory
	mod, err := module.ModuleInCwd()
	check(err)

	// Remove previous build outputs if requested
	if *doClean {
		check(mod.CleanAll())
		os.Exit(0)
	}

	// Build cmd/fsdump for the host platform
	check(mod.BuildBinariesForHost(module.DefaultBinDir, module.Undecorated))
}
