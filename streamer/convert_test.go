package streamer

import (
	"bytes"
	"testing"
)

func TestBGRToRGB(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{
			name: "empty",
			src:  nil,
			want: []byte{},
		},
		{
			name: "single pixel",
			src:  []byte{1, 2, 3},
			want: []byte{3, 2, 1},
		},
		{
			name: "two pixels",
			src:  []byte{1, 2, 3, 4, 5, 6},
			want: []byte{3, 2, 1, 6, 5, 4},
		},
		{
			name: "pure blue to pure red position",
			src:  []byte{255, 0, 0},
			want: []byte{0, 0, 255},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bgrToRGB(tt.src)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("bgrToRGB(%v) = %v, want %v", tt.src, got, tt.want)
			}
			if len(got) != len(tt.src) {
				t.Errorf("length changed: got %d, want %d", len(got), len(tt.src))
			}
		})
	}
}

func TestBGRAToRGB(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		want []byte
	}{
		{
			name: "empty",
			src:  nil,
			want: []byte{},
		},
		{
			name: "single pixel drops alpha",
			src:  []byte{1, 2, 3, 255},
			want: []byte{3, 2, 1},
		},
		{
			name: "two pixels",
			src:  []byte{1, 2, 3, 255, 4, 5, 6, 128},
			want: []byte{3, 2, 1, 6, 5, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bgraToRGB(tt.src)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("bgraToRGB(%v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestBGRToRGBDoesNotAliasInput(t *testing.T) {
	src := []byte{1, 2, 3}
	got := bgrToRGB(src)
	got[0] = 99
	if src[2] == 99 {
		t.Error("conversion returned a slice aliasing its input")
	}
}
