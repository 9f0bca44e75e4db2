package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const fallbackMIME = "image/jpeg"

// EncodeFile returns the standard base64 encoding of the file at path.
func EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURL returns the file at path as a base64 data URL with the sniffed MIME type.
func DataURL(path string) (string, error) {
	encoded, err := EncodeFile(path)
	if err != nil {
		return "", err
	}
	mime, err := sniffImageMIME(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
}

// sniffImageMIME inspects the first 512 bytes of path, the most http.DetectContentType reads.
func sniffImageMIME(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	mime := http.DetectContentType(head[:n])
	if strings.HasPrefix(mime, "image/") {
		return mime, nil
	}
	return fallbackMIME, nil
}
