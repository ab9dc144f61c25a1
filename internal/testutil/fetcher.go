package testutil

import (
	"fmt"

	"repost-sentinel/internal/sentinel"
)

// FakeFetcher serves canned decoded images by URL.
type FakeFetcher struct {
	Images map[string]*sentinel.FetchedImage

	// Errors maps a URL to the error its fetch should fail with.
	Errors map[string]error
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		Images: make(map[string]*sentinel.FetchedImage),
		Errors: make(map[string]error),
	}
}

func (f *FakeFetcher) Fetch(url string) (*sentinel.FetchedImage, error) {
	if err, ok := f.Errors[url]; ok {
		return nil, err
	}
	img, ok := f.Images[url]
	if !ok {
		return nil, fmt.Errorf("no image at %s", url)
	}
	return img, nil
}

var _ sentinel.Fetcher = (*FakeFetcher)(nil)
