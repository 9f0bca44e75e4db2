package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Downloader saves generated images to disk.
type Downloader struct {
	client *http.Client
}

// NewDownloader wraps client; a nil client gets NewHTTPClient defaults.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Downloader{client: client}
}

// Download fetches url and writes the body verbatim to dest. The parent directory must exist.
// data: URLs are decoded locally without a network round trip.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	if strings.HasPrefix(url, "data:") {
		return saveDataURL(url, dest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("download image: %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		// A partial file would claim its number in NextImagePath.
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// SaveBase64 decodes a base64 image payload into dest.
func SaveBase64(payload, dest string) error {
	data, err := base64.StdEncoding.DecodeString(stripDataURLPrefix(payload))
	if err != nil {
		return fmt.Errorf("decode image payload: %w", err)
	}
	return os.WriteFile(dest, data, 0o644)
}

func saveDataURL(url, dest string) error {
	if !strings.Contains(url, ";base64,") {
		return fmt.Errorf("unsupported data URL: only base64 payloads are accepted")
	}
	return SaveBase64(url, dest)
}

func stripDataURLPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}
