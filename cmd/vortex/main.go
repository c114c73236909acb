package main

import (
	"os"

	"github.com/acivaci33-design/vortex-protocol-sub001/cmd/vortex/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
