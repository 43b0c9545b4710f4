// pmcconfig inspects and edits device configuration in PMC board files.
//
// A PMC file is an XML document listing devices, each with configuration
// variables and an optional sensor data record (SDR). Threshold values in
// the SDR are stored raw; pmcconfig shows and accepts them as real values
// using the device's M_VAL and R_EXP coefficients.
//
// Usage:
//
//	pmcconfig board.pmc --list
//	pmcconfig board.pmc --dev psu0_vin
//	pmcconfig board.pmc --dev psu0_vin --get UPPER_CRITICAL
//	pmcconfig board.pmc --dev psu0_vin --set UPPER_CRITICAL 12.5
//	pmcconfig board.pmc --dev psu0_vin --set-thres
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	cancel()
	os.Exit(code)
}
