package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{
			name:      "short text single chunk",
			text:      "hello world",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "splits with overlap",
			text:      strings.Repeat("a", 250),
			chunkSize: 100,
			overlap:   20,
			wantCount: 3,
		},
		{
			name:      "overlap larger than chunk falls back",
			text:      strings.Repeat("b", 200),
			chunkSize: 50,
			overlap:   60,
			wantCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantCount {
				t.Errorf("chunk count = %d, want %d", len(chunks), tt.wantCount)
			}
			for i, chunk := range chunks {
				if len(chunk) > tt.chunkSize {
					t.Errorf("chunk %d length = %d, exceeds %d", i, len(chunk), tt.chunkSize)
				}
			}
		})
	}
}
