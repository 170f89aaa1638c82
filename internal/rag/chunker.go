package rag

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChunkText splits text into windows of at most chunkSize runes, each
// starting chunkSize-overlap runes after the previous one. The final window
// is clamped to the end of the text. An overlap at or above the window size
// would stall the scan, so the cursor is forced past the window end in that
// case.
func ChunkText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	runes := []rune(text)
	var chunks []string
	step := chunkSize - overlap
	for i := 0; i < len(runes); {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if step > 0 {
			i += step
		} else {
			i = end
		}
	}
	return chunks
}
