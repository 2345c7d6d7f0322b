// Command geomean practises and benchmarks pen-and-paper geometric mean
// estimation.
package main

import (
	"os"
)

func main() {
	env := &runtimeEnv{}
	err := newRootCmd(env).Execute()
	env.close()
	if err != nil {
		os.Exit(1)
	}
}
