package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	require.Empty(t, ChunkText("", 500, 50))
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("hello world", 500, 50)
	require.Equal(t, []string{"hello world"}, chunks)
}

func TestChunkTextCoverage(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		size    int
		overlap int
	}{
		{name: "exact multiple", length: 1000, size: 100, overlap: 10},
		{name: "ragged tail", length: 1037, size: 100, overlap: 10},
		{name: "default window", length: 2345, size: 500, overlap: 50},
		{name: "tiny window", length: 17, size: 4, overlap: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			text = text[:tt.length]
			chunks := ChunkText(text, tt.size, tt.overlap)
			require.NotEmpty(t, chunks)

			step := tt.size - tt.overlap
			offset := 0
			total := 0
			for i, chunk := range chunks {
				require.LessOrEqual(t, len(chunk), tt.size)
				end := offset + len(chunk)
				require.LessOrEqual(t, end, tt.length)
				if i == len(chunks)-1 {
					// last chunk ends exactly at the text end
					require.Equal(t, tt.length, end)
				} else {
					require.Equal(t, tt.size, len(chunk))
				}
				total += len(chunk)
				offset += step
			}
			// overlapping windows leave no gap: every consecutive pair
			// shares exactly overlap runes except possibly the clamped tail
			require.GreaterOrEqual(t, total, tt.length)
		})
	}
}

func TestChunkTextOverlapContent(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := ChunkText(text, 10, 3)
	require.Equal(t, []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "vwxyz"}, chunks)
	for i := 1; i < len(chunks)-1; i++ {
		prev := chunks[i-1]
		require.Equal(t, prev[len(prev)-3:], chunks[i][:3])
	}
}

func TestChunkTextOverlapAtLeastWindow(t *testing.T) {
	// the forward-progress guard must terminate even with overlap >= size
	text := strings.Repeat("x", 40)
	chunks := ChunkText(text, 10, 10)
	require.Equal(t, 4, len(chunks))
	chunks = ChunkText(text, 10, 25)
	require.Equal(t, 4, len(chunks))
}

func TestChunkTextUnicode(t *testing.T) {
	text := strings.Repeat("世界和平", 5)
	chunks := ChunkText(text, 8, 2)
	joined := chunks[0]
	require.Equal(t, 8, len([]rune(chunks[0])))
	require.True(t, strings.HasPrefix(text, joined))
}
