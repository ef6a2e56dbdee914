package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"tone_histogram",
		"tone_statistics",
		"tone_histogram_plot",
		"tone_compare",
		"tone_lut",
		"tone_equalize",
		"tone_clip_stretch",
		"tone_range_stretch",
		"frames_average",
		"frames_moving_average",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be declared
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %q has no property", r)
					}
				}
			}

			// Every tool schema must survive the tools/list encoding
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := []string{
		"image_load",
		"tone_histogram",
		"tone_statistics",
		"tone_histogram_plot",
		"tone_compare",
		"tone_equalize",
		"tone_clip_stretch",
		"tone_range_stretch",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, name := range toolsRequiringPath {
		tool := toolMap[name]
		t.Run(name, func(t *testing.T) {
			requiredList, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}

			hasPath := false
			for _, r := range requiredList {
				if r == "path" {
					hasPath = true
					break
				}
			}
			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_LUTKinds(t *testing.T) {
	var tool Tool
	for _, tt := range GetToolDefinitions() {
		if tt.Name == "tone_lut" {
			tool = tt
			break
		}
	}
	if tool.Name == "" {
		t.Fatal("tone_lut tool not found")
	}

	props := tool.InputSchema["properties"].(map[string]interface{})
	kind, ok := props["kind"].(map[string]interface{})
	if !ok {
		t.Fatal("kind property should exist and be a map")
	}
	enum, ok := kind["enum"].([]string)
	if !ok {
		t.Fatal("kind should have enum")
	}

	want := []string{"equalize", "clip_stretch", "range_stretch"}
	if len(enum) != len(want) {
		t.Fatalf("kind enum: got %v, want %v", enum, want)
	}
	for i := range want {
		if enum[i] != want[i] {
			t.Errorf("kind enum[%d]: got %s, want %s", i, enum[i], want[i])
		}
	}

	for _, p := range []string{"p1", "p2", "q3", "q4", "clip_fraction", "path"} {
		if _, ok := props[p]; !ok {
			t.Errorf("tone_lut should accept %q", p)
		}
	}
}

func TestToolDefinitions_FrameSources(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "frames_average" && tool.Name != "frames_moving_average" {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, p := range []string{"paths", "dir", "order"} {
				if _, ok := props[p]; !ok {
					t.Errorf("missing %q property", p)
				}
			}
		})
	}
}

func TestToolDefinitions_SharedPropertiesUnchanged(t *testing.T) {
	// Building the schemas must not leak tool-specific keys into the shared
	// property maps.
	GetToolDefinitions()
	if len(levelProperties) != 4 {
		t.Errorf("levelProperties has %d entries, want 4", len(levelProperties))
	}
}
