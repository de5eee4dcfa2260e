package main

import (
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	mkast "github.com/gomarkdown/markdown/ast"
	mkparser "github.com/gomarkdown/markdown/parser"
)

// grammarScanner renders a Markdown document down to just the contents of
// its ` ```peg ` fenced code blocks, concatenated in document order.
type grammarScanner bool

func (s grammarScanner) RenderNode(w io.Writer, node mkast.Node, entering bool) mkast.WalkStatus {
	if !entering {
		return mkast.GoToNext
	}

	codeBlock, ok := node.(*mkast.CodeBlock)
	if !ok || codeBlock == nil {
		return mkast.GoToNext
	}

	if strings.ToLower(strings.TrimSpace(string(codeBlock.Info))) == "peg" {
		w.Write(codeBlock.Literal)
	}
	return mkast.GoToNext
}

func (s grammarScanner) RenderHeader(w io.Writer, ast mkast.Node) {}
func (s grammarScanner) RenderFooter(w io.Writer, ast mkast.Node) {}

// extractGrammarFromMarkdown pulls every ` ```peg ` fenced code block out of
// a Markdown document and concatenates their contents, letting a grammar be
// authored alongside its prose documentation in one file.
func extractGrammarFromMarkdown(mdText []byte) []byte {
	doc := markdown.Parse(mdText, mkparser.New())
	var scanner grammarScanner
	return markdown.Render(doc, scanner)
}

// looksLikeMarkdown decides, from its extension, whether a grammar source
// file should be run through extractGrammarFromMarkdown before being handed
// to the tokenizer, versus treated as a plain .peg text file directly.
func looksLikeMarkdown(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
