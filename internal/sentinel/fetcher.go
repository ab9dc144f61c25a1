package sentinel

import (
	"errors"
	"image"
)

// ErrImageTooLarge marks an image whose decode would allocate past the
// decompression-bomb bound. The submission is still stored, marked
// unprocessed; no fingerprint is produced.
var ErrImageTooLarge = errors.New("image too large to fingerprint")

// FetchedImage is a decoded image plus the stats recorded in a MediaRecord.
type FetchedImage struct {
	Image    image.Image
	Width    int
	Height   int
	FileSize int64
}

// Fetcher downloads and decodes the image behind a submission URL. The
// downloaded bytes are a transient resource owned by the implementation and
// released on every exit path.
type Fetcher interface {
	Fetch(url string) (*FetchedImage, error)
}
