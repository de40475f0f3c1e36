package symtab

import "strings"

// Category is the bucket a declaration is sorted into.
type Category uint8

const (
	Types Category = iota
	Constants
	Variables
	Functions

	numCategories
)

// Categories lists every category in bucket order.
var Categories = [numCategories]Category{Types, Constants, Variables, Functions}

// lookupOrder is the precedence used when one name is declared in several
// categories of the same scope.
var lookupOrder = [numCategories]Category{Variables, Constants, Functions, Types}

func (c Category) String() string {
	switch c {
	case Types:
		return "type"
	case Constants:
		return "constant"
	case Variables:
		return "variable"
	case Functions:
		return "function"
	}
	return "unknown"
}

// ParseCategory maps a rule-set category name to a Category. Singular and
// plural spellings are accepted.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type", "types":
		return Types, true
	case "constant", "constants":
		return Constants, true
	case "variable", "variables":
		return Variables, true
	case "function", "functions":
		return Functions, true
	}
	return 0, false
}
