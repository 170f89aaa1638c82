package rag

import (
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty content",
			content: "",
			want:    "",
		},
		{
			name:    "whitespace content",
			content: "   \n\t",
			want:    "",
		},
		{
			name:    "plain json string",
			content: `"just a plain note"`,
			want:    "just a plain note",
		},
		{
			name:    "malformed json",
			content: `{"type": "paragraph", "content"`,
			want:    "",
		},
		{
			name:    "not json at all",
			content: "# raw markdown",
			want:    "",
		},
		{
			name:    "block array with inline spans",
			content: `[{"type":"paragraph","content":[{"type":"text","text":"Paris is the capital of France."}]},{"type":"paragraph","content":[{"type":"text","text":"France is in Europe."}]}]`,
			want:    "Paris is the capital of France.\n\nFrance is in Europe.",
		},
		{
			name:    "blocks without text are skipped",
			content: `[{"type":"divider"},{"type":"paragraph","content":[{"type":"text","text":"hello"}]},{"type":"image","props":{"url":"x"}}]`,
			want:    "hello",
		},
		{
			name:    "inline spans concatenated",
			content: `[{"type":"paragraph","content":[{"type":"text","text":"bold"},{"type":"text","text":" and plain"}]}]`,
			want:    "bold and plain",
		},
		{
			name:    "string content field",
			content: `[{"type":"paragraph","content":"direct text"}]`,
			want:    "direct text",
		},
		{
			name:    "unrecognized shape stringified",
			content: `{"foo":"bar"}`,
			want:    `{"foo":"bar"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.content); got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	if got := CosineSimilarity(a, b); got < 0.999 {
		t.Errorf("identical vectors: got %f, want ~1", got)
	}
	c := []float32{0, 1, 0}
	if got := CosineSimilarity(a, c); got != 0 {
		t.Errorf("orthogonal vectors: got %f, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{1, 2}); got != 0 {
		t.Errorf("dimension mismatch: got %f, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("zero vector: got %f, want 0", got)
	}
}
