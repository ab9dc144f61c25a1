package sentinel

import (
	"image"
	"image/color"
	"testing"
)

// grayGrid builds an 8x8 grayscale image from row-major pixel values.
func grayGrid(values [8][8]uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g.SetGray(x, y, color.Gray{Y: values[y][x]})
		}
	}
	return g
}

func TestHashGray(t *testing.T) {
	t.Run("uniform grid yields all ones", func(t *testing.T) {
		// Every comparison is equal-to-previous, which counts as >=.
		got := hashGray(grayGrid([8][8]uint8{}))
		if got != 0xFFFFFFFFFFFFFFFF {
			t.Errorf("hashGray(uniform) = %#x, want all ones", got)
		}
	})

	t.Run("single bright corner pixel", func(t *testing.T) {
		var values [8][8]uint8
		values[0][0] = 255

		// Walk starts at (0,0): 255 >= 0 sets the top bit, the next pixel
		// drops below and clears one, everything after is equal again.
		got := hashGray(grayGrid(values))
		if got != 0xBFFFFFFFFFFFFFFF {
			t.Errorf("hashGray = %#x, want 0xBFFFFFFFFFFFFFFF", got)
		}
	})

	t.Run("horizontal gradient alternates row patterns", func(t *testing.T) {
		var values [8][8]uint8
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				values[y][x] = uint8(x * 30)
			}
		}

		// Even rows walk up the gradient (all ones); odd rows walk back
		// down it (one, then all zeros).
		got := hashGray(grayGrid(values))
		if got != 0xFF80FF80FF80FF80 {
			t.Errorf("hashGray(gradient) = %#x, want 0xFF80FF80FF80FF80", got)
		}
	})
}

func TestDifferenceHash(t *testing.T) {
	t.Run("deterministic across invocations", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 320, 240))
		for y := 0; y < 240; y++ {
			for x := 0; x < 320; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
			}
		}

		first := DifferenceHash(img)
		second := DifferenceHash(img)
		if first != second {
			t.Errorf("DifferenceHash not deterministic: %#x vs %#x", first, second)
		}
	})

	t.Run("uniform image yields all ones regardless of size", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 500, 375))
		for y := 0; y < 375; y++ {
			for x := 0; x < 500; x++ {
				img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
			}
		}

		got := DifferenceHash(img)
		if got != 0xFFFFFFFFFFFFFFFF {
			t.Errorf("DifferenceHash(uniform) = %#x, want all ones", got)
		}
	})
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    Fingerprint
		b    Fingerprint
		want int
	}{
		{name: "identical fingerprints", a: 0xDEADBEEFCAFEF00D, b: 0xDEADBEEFCAFEF00D, want: 100},
		{name: "hamming distance 64", a: 0, b: 0xFFFFFFFFFFFFFFFF, want: 0},
		{name: "hamming distance 32", a: 0, b: 0x00000000FFFFFFFF, want: 50},
		{name: "hamming distance 1 truncates", a: 0, b: 1, want: 98},
		{name: "zero against itself", a: 0, b: 0, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%#x, %#x) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Similarity(tt.b, tt.a); got != tt.want {
				t.Errorf("Similarity(%#x, %#x) = %d, want %d (not symmetric)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}
