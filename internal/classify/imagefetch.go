package classify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// Registered decoders for payload validation.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// maxImageBytes caps how much of a remote image is read into memory.
const maxImageBytes = 10 << 20 // 10 MiB

// ImageFetcher retrieves raw image bytes from a URL
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImageFetcher downloads images over HTTP and verifies they decode
type HTTPImageFetcher struct {
	client *http.Client
}

// NewHTTPImageFetcher creates a new HTTPImageFetcher
func NewHTTPImageFetcher() *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads the URL and checks the payload is a decodable image. Any
// failure here is a classification failure: the ledger never charges for it.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building image request: %v", ErrClassification, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching image: %v", ErrClassification, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image fetch returned %s", ErrClassification, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image body: %v", ErrClassification, err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: payload is not a decodable image: %v", ErrClassification, err)
	}

	return data, nil
}
