// Command siftlog is an offline log analysis and detection engine.
//
// It imports CloudTrail and flat-JSON log files, evaluates YAML detection
// rules written in a small condition language, and scans individual files
// or an entire imported library for matches.
package main

import (
	"os"

	"github.com/ccollicutt/siftlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
