package main

import (
	"github.com/Paintersrp/warden/internal/cli"
	"github.com/Paintersrp/warden/internal/fork"
	"github.com/Paintersrp/warden/internal/metrics"
)

func main() {
	// Must run first: in a re-executed child this dispatches the child
	// role and never returns.
	fork.Main()

	metrics.EmitBuildInfo()
	cli.Execute()
}
