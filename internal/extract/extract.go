package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor converts raw document bytes into plain text for the devis
// parser. Extraction is layout-lossy on purpose; the parser's line
// reconstruction deals with glued output.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// ErrNoText signals a document that opened fine but produced no usable
// text. For PDFs this almost always means a scanned document that would
// need OCR.
var ErrNoText = errors.New("no usable text extracted")

// minTextRunes is the threshold below which extracted text is considered
// unusable.
const minTextRunes = 20

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, fallbackPdftotext bool) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: fallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".txt":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
