package main

import (
	"os"

	"github.com/paw-chain/distance/cmd/distance-oracle/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
