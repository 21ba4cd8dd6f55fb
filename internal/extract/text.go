package extract

import (
	"context"
	"os"
	"strings"
)

// TextExtractor reads plain text files as-is. Invalid UTF-8 is replaced.
type TextExtractor struct{}

// Extract implements Extractor.
func (TextExtractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
