package main

import (
	"fmt"
	"os"
)

const versionString = "casmgen 1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
