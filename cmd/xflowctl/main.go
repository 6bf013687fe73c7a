package main

import (
	"os"

	"github.com/valentine-ezugu/xflowapp-sub001/cmd/xflowctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
