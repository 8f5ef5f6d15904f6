package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// MaxImageSize caps uploads and downloads at 10MB
const MaxImageSize = 10 * 1024 * 1024

// Fetcher retrieves chessboard images from URLs, files or stdin
type Fetcher struct {
	HTTPClient *http.Client
	Stdin      io.Reader
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Stdin: os.Stdin,
	}
}

// Load resolves a CLI image argument: an http(s) URL, "-" for stdin, or a file path
func (f *Fetcher) Load(ctx context.Context, source string) (Payload, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return f.Fetch(ctx, source)
	case source == "-":
		data, err := readLimited(f.Stdin)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to read image from stdin: %w", err)
		}
		return FromBytes(data)
	default:
		file, err := os.Open(source)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to read image: %w", err)
		}
		defer file.Close()

		data, err := readLimited(file)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to read image %s: %w", source, err)
		}
		return FromBytes(data)
	}
}

// Fetch downloads an image and encodes it
func (f *Fetcher) Fetch(ctx context.Context, url string) (Payload, error) {
	slog.Info("Fetching image", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "boardsnap/1.0")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !isImageContentType(contentType) {
		return Payload{}, fmt.Errorf("unsupported content-type: %s", contentType)
	}

	if resp.ContentLength > MaxImageSize {
		return Payload{}, fmt.Errorf("remote image exceeds max size: %d", resp.ContentLength)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read image data: %w", err)
	}

	slog.Debug("Downloaded image", "url", url, "bytes", len(data), "content_type", contentType)
	return FromBytes(data)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image too large (max %d bytes)", MaxImageSize)
	}
	return data, nil
}

func isImageContentType(contentType string) bool {
	lower := strings.ToLower(contentType)
	for _, valid := range []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp", "image/bmp"} {
		if strings.Contains(lower, valid) {
			return true
		}
	}
	// Some hosts serve images as octet-stream; the format is sniffed afterwards.
	return strings.Contains(lower, "application/octet-stream")
}
