package rag

import (
	"encoding/json"
	"strings"
)

// ExtractText flattens a document's stored content into plain text. Content
// is normally a block-structured JSON array (editor format); a bare JSON
// string is returned unchanged and an unrecognized-but-valid shape falls
// back to its serialized form. Malformed input yields an empty string, it
// never fails.
func ExtractText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	switch value := parsed.(type) {
	case string:
		return value
	case []interface{}:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			text := blockText(item)
			if text == "" {
				continue
			}
			parts = append(parts, text)
		}
		return strings.Join(parts, "\n\n")
	default:
		data, err := json.Marshal(parsed)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// blockText pulls the primary inline text out of a single editor block.
func blockText(item interface{}) string {
	block, ok := item.(map[string]interface{})
	if !ok {
		return ""
	}
	content, ok := block["content"]
	if !ok {
		return ""
	}
	switch inline := content.(type) {
	case string:
		return inline
	case []interface{}:
		var sb strings.Builder
		for _, span := range inline {
			m, ok := span.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}
