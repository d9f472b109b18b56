package classify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagerecog/tests/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPImageFetcher_Fetch(t *testing.T) {
	pngData := testutils.MakeTestPNG(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngData)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher()
	data, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
}

func TestHTTPImageFetcher_NotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not an image</html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrClassification)
}

func TestHTTPImageFetcher_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrClassification)
}

func TestHTTPImageFetcher_Unreachable(t *testing.T) {
	fetcher := NewHTTPImageFetcher()
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/cat.png")
	assert.ErrorIs(t, err, ErrClassification)
}
