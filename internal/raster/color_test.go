package raster

import (
	"testing"

	"github.com/gogpu/gg"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want gg.RGBA
		ok   bool
	}{
		{in: "#f00", want: gg.RGBA{R: 1, A: 1}, ok: true},
		{in: "#00ff00", want: gg.RGBA{G: 1, A: 1}, ok: true},
		{in: "#0000ff00", want: gg.RGBA{B: 1}, ok: true},
		{in: "red", want: gg.RGBA{R: 1, A: 1}, ok: true},
		{in: " White ", want: gg.RGBA{R: 1, G: 1, B: 1, A: 1}, ok: true},
		{in: "transparent", want: gg.Transparent, ok: true},
		{in: "", ok: false},
		{in: "#12", ok: false},
		{in: "notacolor", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseColor(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
