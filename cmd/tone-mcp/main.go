// Command tone-mcp serves the tone tools over MCP and runs them from the
// command line.
//
// Usage:
//
//	tone-mcp serve                                  # MCP over stdio
//	tone-mcp stats photo.jpg --plot hist.png
//	tone-mcp compare before.png after.png
//	tone-mcp equalize in.png out.png
//	tone-mcp stretch in.png out.png --clip 0.02
//	tone-mcp range in.png out.png --p1 20 --p2 200 --q3 0 --q4 255
//	tone-mcp lut --kind equalize --image in.png
//	tone-mcp average out.png --dir frames/
//	tone-mcp moving-average --dir frames/ --window 5 --out-dir smoothed/
package main

import (
	"os"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
