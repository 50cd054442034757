package ocr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewTesseractExtractor_Languages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"default", "", []string{"eng"}},
		{"single", "deu", []string{"deu"}},
		{"plus separated", "eng+hin", []string{"eng", "hin"}},
		{"comma separated", " eng , tam ", []string{"eng", "tam"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTesseractExtractor(tt.in).Languages()
			if len(got) != len(tt.want) {
				t.Fatalf("Languages() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Languages()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractText_RejectsNonImages(t *testing.T) {
	e := NewTesseractExtractor("eng")

	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{"empty", nil, ErrEmptyImage},
		{"plain text", []byte("definitely not an image"), ErrNotImage},
		{"pdf", []byte("%PDF-1.4\n"), ErrNotImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractText(context.Background(), tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExtractText() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err := NewTesseractExtractor("eng").ExtractText(ctx, png)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExtractText() error = %v, want context.Canceled", err)
	}
}

func TestVersion(t *testing.T) {
	if v := Version(); strings.TrimSpace(v) == "" {
		t.Error("Version() should report the linked Tesseract version")
	}
}
