package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// TextExtractor turns a stored document into raw text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// DocconvExtractor handles PDF and Word files with docconv and reads plain
// text files directly.
type DocconvExtractor struct{}

// Extract implements TextExtractor.
func (DocconvExtractor) Extract(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf", ".docx", ".doc":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", ext, err)
		}
		return res.Body, nil
	case ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}
