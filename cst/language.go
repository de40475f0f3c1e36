package cst

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language is a grammar plus the rule set that translates its trees.
type Language interface {
	// Name is the identifier used in settings and on the command line.
	Name() string

	// Extensions lists the file extensions, dot included (e.g. ".go").
	Extensions() []string

	// TreeSitterLang returns the tree-sitter grammar.
	TreeSitterLang() *sitter.Language

	// Rules returns the built-in rule-set document.
	Rules() string
}

var (
	mu        sync.RWMutex
	languages = make(map[string]Language)
)

// Register makes a language available by name. Languages register from
// init; registering a name twice panics.
func Register(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := languages[lang.Name()]; dup {
		panic("cst: language registered twice: " + lang.Name())
	}
	languages[lang.Name()] = lang
}

// Get returns the language called name, or nil.
func Get(name string) Language {
	mu.RLock()
	defer mu.RUnlock()
	return languages[name]
}

// List returns the registered names in sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByExtension returns the language claiming ext, or nil. The match ignores
// case.
func ByExtension(ext string) Language {
	mu.RLock()
	defer mu.RUnlock()
	for _, lang := range languages {
		if Handles(lang, ext) {
			return lang
		}
	}
	return nil
}

// Handles reports whether lang claims files with extension ext.
func Handles(lang Language, ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range lang.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// HandlesPath is Handles for the extension of path.
func HandlesPath(lang Language, path string) bool {
	ext := filepath.Ext(path)
	return ext != "" && Handles(lang, ext)
}
