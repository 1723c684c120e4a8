// Command validate checks the app's JSON content trees (bibles/, xrefs/,
// theology/) for structural correctness. It takes no flags, prints a
// textual report and exits non-zero if any problem was found.
package main

import (
	"os"

	"github.com/bereanapp/berean/internal/content"
	"github.com/bereanapp/berean/internal/logger"
)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	scanner := content.NewScanner()
	report, err := scanner.Scan(root)
	if err != nil {
		logger.WithComponent("validate").Fatalf("scan failed: %v", err)
	}

	report.Print(os.Stdout)
	if report.Failed() {
		os.Exit(1)
	}
}
