package server

import "github.com/samber/lo"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var regionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Optional region of interest; (x1,y1) inclusive, (x2,y2) exclusive. Omit to use the whole image.",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

var outputProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional output file path. The format follows the extension. When omitted the result is returned as base64-encoded PNG.",
}

var levelProperties = map[string]interface{}{
	"p1": map[string]interface{}{
		"type":        "integer",
		"description": "Lower input level (0-255). Inputs at or below map to q3.",
	},
	"p2": map[string]interface{}{
		"type":        "integer",
		"description": "Upper input level (0-255), greater than p1. Inputs at or above map to q4.",
	},
	"q3": map[string]interface{}{
		"type":        "integer",
		"description": "Lower output level (0-255)",
	},
	"q4": map[string]interface{}{
		"type":        "integer",
		"description": "Upper output level (0-255), greater than q3",
	},
}

// frameSourceProperties are shared by the frame averaging tools. Exactly one
// of paths and dir must be given.
func frameSourceProperties(extra map[string]interface{}) map[string]interface{} {
	return lo.Assign(map[string]interface{}{
		"paths": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Frame image paths in playback order",
		},
		"dir": map[string]interface{}{
			"type":        "string",
			"description": "Directory whose image files form the sequence",
		},
		"order": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"name", "capture_time"},
			"description": "Ordering of files discovered in dir. Default from server config.",
		},
	}, extra)
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and tone layout (gray or rgb). The image is cached for subsequent tone operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Histograms and statistics
		{
			Name:        "tone_histogram",
			Description: "Compute the 256-bin overall intensity histogram of an image (for color images the intensity is the integer mean of R, G and B) and, for color images, the per-channel R, G and B histograms.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tone_statistics",
			Description: "Compute mean, standard deviation, median, mode, minimum and maximum of the overall histogram (and of each color channel), plus the mean color as hex, RGB and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tone_histogram_plot",
			Description: "Render the histogram as a PNG plot: gray bars for the overall histogram with R, G and B curves overlaid for color images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Plot width in pixels. Default 512",
						"default":     512,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Plot height in pixels. Default 256",
						"default":     256,
					},
				},
				"required": []string{"path"},
			},
		},

		{
			Name:        "tone_compare",
			Description: "Compare the tone of two images, or two regions of one image: fraction of pixels that differ, mean absolute difference, brightness shift and contrast ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": regionProperty,
					"other_path": map[string]interface{}{
						"type":        "string",
						"description": "Image to compare against. Defaults to path, in which case a region is required.",
					},
					"other_region": regionProperty,
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Mean per-channel difference above which a pixel counts as different (0-255). Default 10",
						"default":     10,
					},
				},
				"required": []string{"path"},
			},
		},

		// Lookup tables
		{
			Name:        "tone_lut",
			Description: "Build a 256-entry lookup table without applying it. equalize and clip_stretch derive the table from the image histogram; range_stretch needs only p1, p2, q3 and q4.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": lo.Assign(levelProperties, map[string]interface{}{
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"equalize", "clip_stretch", "range_stretch"},
						"description": "Lookup table to build",
					},
					"path": pathProperty,
					"clip_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of samples clipped from each tail (clip_stretch only). Default from server config.",
					},
				}),
				"required": []string{"kind"},
			},
		},

		// Tone mapping
		{
			Name:        "tone_equalize",
			Description: "Equalize the image histogram through its cumulative distribution. The same table is applied to every channel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"output": outputProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tone_clip_stretch",
			Description: "Clip a fraction of the darkest and brightest samples and stretch the remaining range linearly to 0-255.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"output": outputProperty,
					"clip_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of samples clipped from each tail, between 0 and 1. Default from server config.",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "tone_range_stretch",
			Description: "Map the input range [p1, p2] linearly onto the output range [q3, q4]; inputs outside the range saturate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": lo.Assign(levelProperties, map[string]interface{}{
					"path":   pathProperty,
					"output": outputProperty,
				}),
				"required": []string{"path", "p1", "p2", "q3", "q4"},
			},
		},

		// Frame averaging
		{
			Name:        "frames_average",
			Description: "Average a sequence of equally sized frames into a single image, reducing noise.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameSourceProperties(map[string]interface{}{
					"output": outputProperty,
				}),
			},
		},
		{
			Name:        "frames_moving_average",
			Description: "Compute the trailing moving average of a frame sequence and write each averaged frame as a numbered image (frame_00000.png, ...) into output_dir.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": frameSourceProperties(map[string]interface{}{
					"window": map[string]interface{}{
						"type":        "integer",
						"description": "Number of frames per average. Default from server config.",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory the averaged frames are written to; created if missing",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Output file extension (png, jpg, tif, bmp, gif). Default from server config.",
					},
				}),
				"required": []string{"output_dir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
