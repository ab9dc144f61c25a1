// Package media downloads submission images and decodes them for
// fingerprinting. Downloaded bytes live in a temp file that is removed on
// every exit path.
package media

import (
	"fmt"
	"image"
	"io"
	"os"

	"repost-sentinel/internal/sentinel"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// maxDecodedPixels bounds the decoded allocation of a single image. Anything
// larger is rejected before the full decode (decompression-bomb guard).
const maxDecodedPixels = 89478485

// Downloader streams the raw bytes at a URL. Satisfied by the platform client.
type Downloader interface {
	Download(url string, w io.Writer) error
}

// Fetcher implements sentinel.Fetcher on top of a Downloader.
type Fetcher struct {
	downloader Downloader
	tmpDir     string // "" means the OS default
}

// NewFetcher creates a Fetcher that stages downloads under tmpDir.
func NewFetcher(downloader Downloader, tmpDir string) *Fetcher {
	return &Fetcher{downloader: downloader, tmpDir: tmpDir}
}

// Fetch downloads the image at url into a temp file, verifies the decoded
// size against the bomb guard, and decodes it. Returns
// sentinel.ErrImageTooLarge when the decode would allocate past the bound.
func (f *Fetcher) Fetch(url string) (*sentinel.FetchedImage, error) {
	tmp, err := os.CreateTemp(f.tmpDir, "sentinel-media-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := f.downloader.Download(url, tmp); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}

	info, err := tmp.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat temp file: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	cfg, _, err := image.DecodeConfig(tmp)
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width*cfg.Height > maxDecodedPixels {
		return nil, fmt.Errorf("%d x %d pixels: %w", cfg.Width, cfg.Height, sentinel.ErrImageTooLarge)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	img, _, err := image.Decode(tmp)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	return &sentinel.FetchedImage{
		Image:    img,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		FileSize: info.Size(),
	}, nil
}

var _ sentinel.Fetcher = (*Fetcher)(nil)
