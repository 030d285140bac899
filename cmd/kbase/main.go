// Command kbase is the tenant knowledge base retrieval engine CLI.
package main

import (
	"os"

	"github.com/kbase-labs/kbase-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
