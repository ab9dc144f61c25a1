package sentinel

import (
	"image"
	"math/bits"

	"golang.org/x/image/draw"
)

// Fingerprint is a 64-bit perceptual hash summarizing an image's coarse
// gradient structure. It is produced exactly once per image and never mutated.
type Fingerprint uint64

// PlaceholderFingerprint is the difference hash of imgur's generic
// "image unavailable" placeholder. A submission carrying it is a dead link,
// not a repost, and is reported without a corpus scan.
const PlaceholderFingerprint Fingerprint = 9925021303884596990

const hashGridSize = 8

// DifferenceHash computes the perceptual fingerprint of a decoded image.
//
// The image is converted to 8-bit grayscale and downscaled to an 8x8 grid
// with a Catmull-Rom filter (deterministic for identical input pixels). The
// grid is then walked in a zig-zag over row pairs: rows 0,2,4,6 left to
// right, each immediately followed by the next row right to left. Each
// visited pixel contributes one bit: 1 when its value is >= the previously
// visited pixel's value. The walk is seeded with the bottom-left pixel.
//
// Fingerprints are compared with Similarity; their bit layout is part of the
// stored corpus format and must not change.
func DifferenceHash(img image.Image) Fingerprint {
	gray := image.NewGray(image.Rect(0, 0, hashGridSize, hashGridSize))
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)
	return hashGray(gray)
}

// hashGray runs the zig-zag traversal over an 8x8 grayscale grid.
func hashGray(gray *image.Gray) Fingerprint {
	prev := gray.GrayAt(0, hashGridSize-1).Y
	var hash Fingerprint

	for row := 0; row < hashGridSize; row += 2 {
		for col := 0; col < hashGridSize; col++ {
			hash <<= 1
			px := gray.GrayAt(col, row).Y
			if px >= prev {
				hash |= 1
			}
			prev = px
		}
		for col := hashGridSize - 1; col >= 0; col-- {
			hash <<= 1
			px := gray.GrayAt(col, row+1).Y
			if px >= prev {
				hash |= 1
			}
			prev = px
		}
	}

	return hash
}

// Similarity returns the normalized similarity between two fingerprints as an
// integer percentage in [0,100], derived from their Hamming distance.
// It is symmetric, and Similarity(f, f) == 100 for every f.
func Similarity(a, b Fingerprint) int {
	return (64 - bits.OnesCount64(uint64(a^b))) * 100 / 64
}
