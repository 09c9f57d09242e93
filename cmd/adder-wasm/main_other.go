//go:build !wasip1

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "adder-wasm must be built with GOOS=wasip1 GOARCH=wasm")
	os.Exit(2)
}
