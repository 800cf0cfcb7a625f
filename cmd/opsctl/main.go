// Command opsctl is the operator CLI for the admin API: it issues tokens,
// prints the role permission tables and runs schema migrations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(loadConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
