package document

import (
	"sort"
	"unicode"

	"go.lsp.dev/protocol"

	"github.com/arjunmahishi/tsls/ast"
	"github.com/arjunmahishi/tsls/span"
	"github.com/arjunmahishi/tsls/symtab"
)

// TokenLegend lists the semantic token types and modifiers in the order
// SemanticTokens encodes them.
var TokenLegend = protocol.SemanticTokensLegend{
	TokenTypes: []protocol.SemanticTokenTypes{
		protocol.SemanticTokenNamespace,
		protocol.SemanticTokenType,
		protocol.SemanticTokenVariable,
		protocol.SemanticTokenFunction,
	},
	TokenModifiers: []protocol.SemanticTokenModifiers{
		protocol.SemanticTokenModifierDeclaration,
		protocol.SemanticTokenModifierReadonly,
	},
}

const (
	tokenNamespace uint32 = iota
	tokenType
	tokenVariable
	tokenFunction
)

const (
	modDeclaration uint32 = 1 << iota
	modReadonly
)

type token struct {
	rng  protocol.Range
	typ  uint32
	mods uint32
}

// SemanticTokens classifies the single-line identifier leaves of the AST.
// Declared names and resolved usages take the token type of their symbol's
// category; unresolved Type leaves are types and the Package leaf is a
// namespace. The result uses the relative encoding of the protocol.
func (s *Snapshot) SemanticTokens() *protocol.SemanticTokens {
	var tokens []token
	s.Ast.Walk(s.Ast.Root(), func(id ast.NodeID, _ int) bool {
		n := s.Ast.Get(id)
		if id == s.Ast.Root() || len(n.Children) > 0 {
			return true
		}
		if tok, ok := s.classify(n); ok {
			tokens = append(tokens, tok)
		}
		return true
	})
	sort.SliceStable(tokens, func(i, j int) bool {
		return span.Before(tokens[i].rng.Start, tokens[j].rng.Start)
	})
	return &protocol.SemanticTokens{Data: encodeTokens(tokens)}
}

func (s *Snapshot) classify(n *ast.Node) (token, bool) {
	if n.Range.Start.Line != n.Range.End.Line || !isIdentifier(n.Content) {
		return token{}, false
	}

	if sym, ok := s.Table.SymbolWithRange(n.Range); ok {
		tok := token{rng: n.Range, typ: categoryToken(sym.Category)}
		if sym.NameRange == n.Range {
			tok.mods |= modDeclaration
		}
		if sym.Category == symtab.Constants {
			tok.mods |= modReadonly
		}
		return tok, true
	}

	switch n.Kind {
	case ast.KindType:
		return token{rng: n.Range, typ: tokenType}, true
	case ast.Generic("Package"):
		return token{rng: n.Range, typ: tokenNamespace}, true
	}
	return token{}, false
}

func categoryToken(c symtab.Category) uint32 {
	switch c {
	case symtab.Types:
		return tokenType
	case symtab.Functions:
		return tokenFunction
	}
	return tokenVariable
}

// encodeTokens writes five integers per token: line delta, start delta
// (relative to the previous token on the same line), length, type and
// modifiers. Tokens starting where the previous one started are dropped.
func encodeTokens(tokens []token) []uint32 {
	data := make([]uint32, 0, 5*len(tokens))
	var line, char uint32
	for i, tok := range tokens {
		start := tok.rng.Start
		if i > 0 && start == tokens[i-1].rng.Start {
			continue
		}
		deltaChar := start.Character
		if start.Line == line {
			deltaChar -= char
		}
		data = append(data, start.Line-line, deltaChar, tok.rng.End.Character-start.Character, tok.typ, tok.mods)
		line, char = start.Line, start.Character
	}
	return data
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
