// Command tocctl extracts or parses PDF tables of contents from the shell:
//
//	tocctl extract report.pdf
//	tocctl parse result.zip
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
