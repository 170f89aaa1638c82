package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/notewell/notewell/internal/model"
	appErr "github.com/notewell/notewell/internal/pkg/errors"
)

// ImportService converts external markdown into the editor's block format
// so imported notes flow through the same indexing pipeline as native ones.
type ImportService struct {
	documents *DocumentService
}

func NewImportService(documents *DocumentService) *ImportService {
	return &ImportService{documents: documents}
}

type ImportInput struct {
	Title    string
	Markdown string
	ParentID string
}

func (s *ImportService) ImportMarkdown(ctx context.Context, userID string, input ImportInput) (*model.Document, error) {
	if strings.TrimSpace(input.Markdown) == "" {
		return nil, appErr.ErrInvalid
	}
	blocks := MarkdownToBlocks(input.Markdown)
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = firstBlockText(blocks)
	}
	if title == "" {
		title = "Imported note"
	}
	content, err := json.Marshal(blocks)
	if err != nil {
		return nil, err
	}
	return s.documents.Create(ctx, userID, DocumentCreateInput{
		Title:    title,
		Content:  string(content),
		ParentID: input.ParentID,
	})
}

// MarkdownToBlocks walks the markdown AST and emits one editor block per
// top-level node. Inline formatting is flattened to plain text.
func MarkdownToBlocks(markdown string) []map[string]interface{} {
	md := goldmark.New()
	source := []byte(markdown)
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	blocks := make([]map[string]interface{}, 0)
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			txt := nodeText(n, source)
			if txt == "" {
				continue
			}
			blocks = append(blocks, map[string]interface{}{
				"type":    "heading",
				"props":   map[string]interface{}{"level": n.Level},
				"content": []interface{}{inlineText(txt)},
			})
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(source))
			}
			code := strings.TrimRight(sb.String(), "\n")
			if code == "" {
				continue
			}
			lang := string(n.Language(source))
			blocks = append(blocks, map[string]interface{}{
				"type":    "codeBlock",
				"props":   map[string]interface{}{"language": lang},
				"content": []interface{}{inlineText(code)},
			})
		default:
			txt := nodeText(node, source)
			if txt == "" {
				continue
			}
			blocks = append(blocks, map[string]interface{}{
				"type":    "paragraph",
				"content": []interface{}{inlineText(txt)},
			})
		}
	}
	return blocks
}

func inlineText(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func firstBlockText(blocks []map[string]interface{}) string {
	for _, block := range blocks {
		content, ok := block["content"].([]interface{})
		if !ok || len(content) == 0 {
			continue
		}
		span, ok := content[0].(map[string]interface{})
		if !ok {
			continue
		}
		if txt, ok := span["text"].(string); ok && txt != "" {
			if line := strings.SplitN(txt, "\n", 2)[0]; line != "" {
				return line
			}
		}
	}
	return ""
}
