package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

var (
	// ErrEmptyImage is returned when no image bytes are given.
	ErrEmptyImage = errors.New("empty image")
	// ErrNotImage is returned when the payload is not a recognised image format.
	ErrNotImage = errors.New("payload is not an image")
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// TesseractExtractor extracts text from images with Tesseract.
// A fresh Tesseract client is created per call, so it is safe for concurrent use.
type TesseractExtractor struct {
	languages []string
}

// NewTesseractExtractor creates an extractor for the given languages, e.g. "eng" or "eng+deu".
func NewTesseractExtractor(languages string) *TesseractExtractor {
	var langs []string
	for _, l := range strings.FieldsFunc(languages, func(r rune) bool { return r == '+' || r == ',' }) {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{DefaultLanguage}
	}
	return &TesseractExtractor{languages: langs}
}

// Languages returns the configured Tesseract languages.
func (e *TesseractExtractor) Languages() []string {
	return append([]string(nil), e.languages...)
}

// ExtractText runs OCR over image and returns the trimmed text.
func (e *TesseractExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := checkImage(image); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Version reports the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func checkImage(image []byte) error {
	if len(image) == 0 {
		return ErrEmptyImage
	}
	if ct := http.DetectContentType(image); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: detected %s", ErrNotImage, ct)
	}
	return nil
}
