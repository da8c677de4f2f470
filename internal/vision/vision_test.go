package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJPEG(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "JPEG", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, want: true},
		{name: "PNG", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}},
		{name: "GIF", data: []byte("GIF89a")},
		{name: "WebP", data: append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...)},
		{name: "PDF disguised as image", data: []byte("%PDF-1.4 malicious content")},
		{name: "empty", data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJPEG(tt.data))
		})
	}
}
