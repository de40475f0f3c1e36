package ast

// Tag discriminates the NodeKind variants.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagRoot        // whole file
	TagName        // identifier leaf
	TagType        // type expression leaf or subtree
	TagNode        // any rule-defined or generic kind
)

// NodeKind is a comparable tagged kind. Name is only set for TagNode.
type NodeKind struct {
	Tag  Tag
	Name string
}

var (
	KindRoot = NodeKind{Tag: TagRoot}
	KindName = NodeKind{Tag: TagName}
	KindType = NodeKind{Tag: TagType}
)

// Generic returns the rule-defined kind with the given name.
func Generic(name string) NodeKind {
	return NodeKind{Tag: TagNode, Name: name}
}

// KindFor maps a name used in a rule-set document to a kind. The reserved
// names Root, Name and Type select the built-in variants.
func KindFor(name string) NodeKind {
	switch name {
	case "Root":
		return KindRoot
	case "Name":
		return KindName
	case "Type":
		return KindType
	default:
		return Generic(name)
	}
}

func (k NodeKind) String() string {
	switch k.Tag {
	case TagRoot:
		return "Root"
	case TagName:
		return "Name"
	case TagType:
		return "Type"
	case TagNode:
		return k.Name
	default:
		return "Invalid"
	}
}

// IsValid reports whether the kind is one of the defined variants.
func (k NodeKind) IsValid() bool {
	return k.Tag != TagInvalid && (k.Tag != TagNode || k.Name != "")
}
