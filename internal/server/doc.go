// Package server implements the MCP (Model Context Protocol) server for the
// tone tools.
//
// This package provides a JSON-RPC 2.0 server that exposes histogram
// analysis, tone mapping and frame averaging through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//
// Histograms:
//   - tone_histogram: Overall and per-channel histograms, optionally of a region
//   - tone_statistics: Mean, deviation, median, mode, range and mean color
//   - tone_histogram_plot: Histogram rendered as PNG
//   - tone_compare: Tone differences between two images or regions
//
// Tone Mapping:
//   - tone_lut: Build an equalize, clip_stretch or range_stretch table
//   - tone_equalize: Histogram equalization
//   - tone_clip_stretch: Percentile-clipped linear stretch
//   - tone_range_stretch: Manual [p1,p2] to [q3,q4] stretch
//
// Frame Averaging:
//   - frames_average: Mean of a whole sequence
//   - frames_moving_average: Trailing moving average written as numbered frames
//
// Optional arguments (clip fraction, window size, ordering, output format)
// default to the values of the config.Config the server was created with.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Frame sequences bypass the cache.
//
// # Logging
//
// Requests and tool failures are logged with zerolog to the logger passed to
// New; stdout is never used for logs. Tool handlers find the logger through
// zerolog.Ctx.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (malformed tools/call
//     params) or -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(cfg, logger, version)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server stopped")
//	}
package server
