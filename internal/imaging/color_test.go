package imaging

import "testing"

func TestMeanColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		wantHex string
		wantRGB RGBColor
		wantHSL HSLColor
	}{
		{"black", 0, 0, 0, "#000000", RGBColor{0, 0, 0}, HSLColor{0, 0, 0}},
		{"white", 255, 255, 255, "#FFFFFF", RGBColor{255, 255, 255}, HSLColor{0, 0, 100}},
		{"red", 255, 0, 0, "#FF0000", RGBColor{255, 0, 0}, HSLColor{0, 100, 50}},
		{"green", 0, 255, 0, "#00FF00", RGBColor{0, 255, 0}, HSLColor{120, 100, 50}},
		{"blue", 0, 0, 255, "#0000FF", RGBColor{0, 0, 255}, HSLColor{240, 100, 50}},
		{"fractional mean rounds", 127.6, 127.6, 127.6, "#808080", RGBColor{128, 128, 128}, HSLColor{0, 0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanColor(tt.r, tt.g, tt.b)

			if got.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.wantHex)
			}
			if got.RGB != tt.wantRGB {
				t.Errorf("RGB: got %+v, want %+v", got.RGB, tt.wantRGB)
			}
			// Allow small tolerance for floating point
			if abs(got.HSL.H-tt.wantHSL.H) > 1 || abs(got.HSL.S-tt.wantHSL.S) > 1 || abs(got.HSL.L-tt.wantHSL.L) > 1 {
				t.Errorf("HSL: got %+v, want %+v", got.HSL, tt.wantHSL)
			}
		})
	}
}

func TestMeanColor_ClampsOutOfRange(t *testing.T) {
	got := MeanColor(-20, 300, 128)
	if got.RGB.R != 0 || got.RGB.G != 255 {
		t.Errorf("clamped RGB: got %+v, want R=0 G=255", got.RGB)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
