package main

import (
	"fmt"
	"os"

	"github.com/danmuck/bitsctl/internal/observability"
)

func main() {
	observability.InitLogger("bitsctl")
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bitsctl: %v\n", err)
		os.Exit(1)
	}
}
