// Command ilc compiles an IL source file to textual LLVM IR.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}
