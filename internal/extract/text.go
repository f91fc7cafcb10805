package extract

import (
	"fmt"
	"io"
)

// TextExtractor handles plain .txt files, mainly useful for replaying a
// previously extracted devis through the pipeline.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}
