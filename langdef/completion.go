package langdef

import (
	"fmt"

	"go.lsp.dev/protocol"
	"gopkg.in/yaml.v3"
)

// CompletionKind names an LSP completion item kind. It is only used to
// present symbols in editors.
type CompletionKind string

var completionKinds = map[CompletionKind]protocol.CompletionItemKind{
	"Text":          protocol.CompletionItemKindText,
	"Method":        protocol.CompletionItemKindMethod,
	"Function":      protocol.CompletionItemKindFunction,
	"Constructor":   protocol.CompletionItemKindConstructor,
	"Field":         protocol.CompletionItemKindField,
	"Variable":      protocol.CompletionItemKindVariable,
	"Class":         protocol.CompletionItemKindClass,
	"Interface":     protocol.CompletionItemKindInterface,
	"Module":        protocol.CompletionItemKindModule,
	"Property":      protocol.CompletionItemKindProperty,
	"Unit":          protocol.CompletionItemKindUnit,
	"Value":         protocol.CompletionItemKindValue,
	"Enum":          protocol.CompletionItemKindEnum,
	"Keyword":       protocol.CompletionItemKindKeyword,
	"Snippet":       protocol.CompletionItemKindSnippet,
	"Color":         protocol.CompletionItemKindColor,
	"File":          protocol.CompletionItemKindFile,
	"Reference":     protocol.CompletionItemKindReference,
	"Folder":        protocol.CompletionItemKindFolder,
	"EnumMember":    protocol.CompletionItemKindEnumMember,
	"Constant":      protocol.CompletionItemKindConstant,
	"Struct":        protocol.CompletionItemKindStruct,
	"Event":         protocol.CompletionItemKindEvent,
	"Operator":      protocol.CompletionItemKindOperator,
	"TypeParameter": protocol.CompletionItemKindTypeParameter,
}

// ItemKind returns the protocol value, falling back to Text.
func (k CompletionKind) ItemKind() protocol.CompletionItemKind {
	if v, ok := completionKinds[k]; ok {
		return v
	}
	return protocol.CompletionItemKindText
}

// IsValid reports whether k names a known completion item kind.
func (k CompletionKind) IsValid() bool {
	_, ok := completionKinds[k]
	return ok
}

// UnmarshalYAML rejects unknown kind names.
func (k *CompletionKind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	if !CompletionKind(name).IsValid() {
		return fmt.Errorf("line %d: unknown completion kind %q", value.Line, name)
	}
	*k = CompletionKind(name)
	return nil
}
