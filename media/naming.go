package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ImageExt is the extension given to every saved image.
const ImageExt = "jpg"

// NextImagePath returns the first dir/<prefix><N>.jpg, N counting from 1, that does not exist yet.
func NextImagePath(dir, prefix string) (string, error) {
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s%d.%s", prefix, n, ImageExt))
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
