// main is the entry point for the locscope CLI.
package main

import (
	"github.com/leen324/locscope/cmd"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
}
