package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notewell/notewell/internal/rag"
)

func marshalBlocks(t *testing.T, blocks []map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(blocks)
	require.NoError(t, err)
	return string(data)
}

func TestMarkdownToBlocks(t *testing.T) {
	markdown := "# Capital Cities\n\nParis is the capital of France.\n\n```go\nfmt.Println(\"hi\")\n```\n"
	blocks := MarkdownToBlocks(markdown)
	require.Len(t, blocks, 3)

	require.Equal(t, "heading", blocks[0]["type"])
	require.Equal(t, map[string]interface{}{"level": 1}, blocks[0]["props"])
	heading := blocks[0]["content"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, "Capital Cities", heading["text"])

	require.Equal(t, "paragraph", blocks[1]["type"])
	paragraph := blocks[1]["content"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, "Paris is the capital of France.", paragraph["text"])

	require.Equal(t, "codeBlock", blocks[2]["type"])
	require.Equal(t, map[string]interface{}{"language": "go"}, blocks[2]["props"])
}

func TestMarkdownToBlocks_EmptyInput(t *testing.T) {
	require.Empty(t, MarkdownToBlocks(""))
	require.Empty(t, MarkdownToBlocks("   \n\n  "))
}

func TestMarkdownToBlocks_RoundTripsThroughExtractor(t *testing.T) {
	blocks := MarkdownToBlocks("# Title\n\nBody paragraph.")
	content := marshalBlocks(t, blocks)
	text := rag.ExtractText(content)
	require.Equal(t, "Title\n\nBody paragraph.", text)
}

func TestFirstBlockText(t *testing.T) {
	blocks := MarkdownToBlocks("First line here.\n\nSecond paragraph.")
	require.Equal(t, "First line here.", firstBlockText(blocks))
	require.Equal(t, "", firstBlockText(nil))
}
