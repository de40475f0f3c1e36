package lang

import (
	_ "embed"

	sitter "github.com/smacker/go-tree-sitter"
	golang "github.com/smacker/go-tree-sitter/golang"

	"github.com/arjunmahishi/tsls/cst"
)

//go:embed rules/go.yaml
var goRules string

// Go implements the cst.Language interface for Go source code.
type Go struct{}

func init() {
	cst.Register(&Go{})
}

func (g *Go) Name() string {
	return "go"
}

func (g *Go) Extensions() []string {
	return []string{".go"}
}

func (g *Go) TreeSitterLang() *sitter.Language {
	return golang.GetLanguage()
}

func (g *Go) Rules() string {
	return goRules
}
