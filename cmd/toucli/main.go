// toucli runs the TOU analysis offline and maintains tariff files.
//
// Usage:
//
//	toucli analyze --day day.json --detail detail.json [--tariffs tariffs.toml]
//	toucli migrate-tariffs --in legacy.toml [--out tariffs.toml]
//	toucli defaults
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
