package cst

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is a parsed syntax tree together with the source it was parsed from.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return Wrap(t.tree.RootNode())
}

// Source returns the parsed text.
func (t *Tree) Source() []byte {
	return t.source
}

// Parser wraps a tree-sitter parser for a specific language. It is not safe
// for concurrent use; each worker or file owns its own Parser.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new parser for the given language.
func NewParser(language Language) *Parser {
	p := sitter.NewParser()
	p.SetLanguage(language.TreeSitterLang())
	return &Parser{parser: p}
}

// Parse parses source. It fails only when ctx is done first; syntax errors
// are reported as ERROR and MISSING nodes in the tree.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &Tree{tree: tree, source: source}, nil
}
