// Package source turns input documents into the plain text the phone
// scanner reads. Markdown is reduced to its text content with goldmark and
// HTML to its visible text with goquery; anything else is read as-is.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind identifies how a document is converted to text.
type Kind string

const (
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
)

// KindOf picks a Kind from the file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	case ".html", ".htm":
		return KindHTML
	default:
		return KindText
	}
}

// ReadFile reads path and extracts its text according to KindOf(path).
func ReadFile(path string) (string, Kind, error) {
	kind := KindOf(path)

	f, err := os.Open(path)
	if err != nil {
		return "", kind, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	content, err := ExtractText(kind, f)
	if err != nil {
		return "", kind, fmt.Errorf("extract %s: %w", path, err)
	}
	return content, kind, nil
}

// ExtractText reads r fully and returns its text content.
func ExtractText(kind Kind, r io.Reader) (string, error) {
	switch kind {
	case KindMarkdown:
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read content: %w", err)
		}
		return markdownText(data)
	case KindHTML:
		return htmlText(r)
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read content: %w", err)
		}
		return string(data), nil
	}
}

var markdown = goldmark.New()

// markdownText walks the goldmark AST and keeps inline text and code.
// Blocks end with a newline so numbers in adjacent paragraphs never touch.
func markdownText(source []byte) (string, error) {
	doc := markdown.Parser().Parse(text.NewReader(source))

	var b bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("walk markdown: %w", err)
	}
	return b.String(), nil
}

// htmlBlocks are the elements whose text must not run into a neighbour's.
const htmlBlocks = "address, article, aside, blockquote, dd, div, dl, dt, " +
	"figcaption, footer, form, h1, h2, h3, h4, h5, h6, header, hr, li, " +
	"main, nav, ol, p, pre, section, table, td, th, tr, ul"

// htmlText returns the visible text of an HTML document.
// Like markdownText, every block ends with a newline so numbers in adjacent
// elements never touch.
func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	// Drop elements whose content is never rendered as text
	doc.Find("script, style, noscript").Remove()

	// Line breaks become newlines, blocks get a trailing one
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(htmlBlocks).AppendHtml("\n")

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}
