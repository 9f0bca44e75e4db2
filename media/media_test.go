package media

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestEncodeFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.jpg")
	payload := []byte{0xff, 0xd8, 0xff, 0x00, 0x01, 0x02}
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	encoded, err := EncodeFile(path)
	require.NoError(t, err)
	again, err := EncodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, encoded, again)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestEncodeFile_Missing(t *testing.T) {
	_, err := EncodeFile(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDataURL(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "pixel.png")
	require.NoError(t, os.WriteFile(pngPath, pngPixel, 0o644))
	url, err := DataURL(pngPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)
	encoded, err := EncodeFile(pngPath)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+encoded, url)

	txtPath := filepath.Join(dir, "notes.jpg")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain text"), 0o644))
	url, err = DataURL(txtPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"), url)
}

func TestNextImagePath(t *testing.T) {
	dir := t.TempDir()

	first, err := NextImagePath(dir, "masterpiece")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "masterpiece1.jpg"), first)
	require.NoError(t, os.WriteFile(first, []byte("a"), 0o644))

	second, err := NextImagePath(dir, "masterpiece")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "masterpiece2.jpg"), second)

	other, err := NextImagePath(dir, "charcoal")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "charcoal1.jpg"), other)
}

func TestNextImagePath_SkipsExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"drawing1.jpg", "drawing2.jpg", "drawing4.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	got, err := NextImagePath(dir, "drawing")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "drawing3.jpg"), got)
}

func TestDownloader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngPixel)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "masterpiece1.jpg")
	d := NewDownloader(srv.Client())
	require.NoError(t, d.Download(context.Background(), srv.URL+"/img.png", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, pngPixel, got)
}

func TestDownloader_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "masterpiece1.jpg")
	err := NewDownloader(srv.Client()).Download(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.NoFileExists(t, dest)
}

func TestDownloader_TruncatedBodyLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: image/png\r\nContent-Length: 4096\r\n\r\n")
		_, _ = buf.Write(pngPixel)
		_ = buf.Flush()
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "masterpiece1.jpg")
	err := NewDownloader(srv.Client()).Download(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.NoFileExists(t, dest)

	next, err := NextImagePath(dir, "masterpiece")
	require.NoError(t, err)
	assert.Equal(t, dest, next)
}

func TestDownloader_MissingDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngPixel)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing", "masterpiece1.jpg")
	assert.Error(t, NewDownloader(srv.Client()).Download(context.Background(), srv.URL, dest))
}

func TestDownloader_DataURL(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "inline1.jpg")
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)

	require.NoError(t, NewDownloader(nil).Download(context.Background(), url, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, pngPixel, got)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)
}
