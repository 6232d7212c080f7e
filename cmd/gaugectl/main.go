// Command gaugectl inspects and configures a BQ28Z610 gas gauge from a Linux
// host, over a real I2C adapter or the built-in simulator.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	a := &app{}
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
