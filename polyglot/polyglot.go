// Package polyglot best-effort lists the names declared inside a fenced
// foreign-code block using tree-sitter. It is strictly advisory: results
// feed hover hints only and are never consulted by resolve.
package polyglot

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// declarationQueries lists, per supported language, the tree-sitter query
// patterns whose "name" capture names a top-level declaration. Only the
// shapes common enough to show up in a short fenced example are covered;
// anything else is silently skipped rather than guessed at.
var declarationQueries = map[string][]string{
	"javascript": {
		`(function_declaration name: (identifier) @name)`,
		`(class_declaration name: (identifier) @name)`,
		`(variable_declarator name: (identifier) @name)`,
	},
	"python": {
		`(function_definition name: (identifier) @name)`,
		`(class_definition name: (identifier) @name)`,
	},
}

var languages = map[string]*sitter.Language{
	"javascript": javascript.GetLanguage(),
	"python":     python.GetLanguage(),
}

// Supported reports whether lang has a registered grammar.
func Supported(lang string) bool {
	_, ok := languages[lang]
	return ok
}

// ExtractDeclaredSymbolNames parses content as lang and returns the
// top-level names it finds declared, in source order with duplicates
// removed. Unsupported languages and parse failures both return (nil,
// false) rather than an error: this is a hint source, not a required one.
func ExtractDeclaredSymbolNames(lang string, content []byte) ([]string, bool) {
	sitterLang, ok := languages[lang]
	if !ok {
		return nil, false
	}
	patterns, ok := declarationQueries[lang]
	if !ok {
		return nil, false
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(sitterLang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil, false
	}
	root := tree.RootNode()
	if root == nil {
		return nil, false
	}

	var names []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		q, err := sitter.NewQuery([]byte(pattern), sitterLang)
		if err != nil {
			continue
		}
		cursor := sitter.NewQueryCursor()
		cursor.Exec(q, root)
		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, capture := range match.Captures {
				if q.CaptureNameForId(capture.Index) != "name" {
					continue
				}
				name := capture.Node.Content(content)
				if name != "" && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
		q.Close()
		cursor.Close()
	}
	return names, true
}

// errUnsupported backs MustSupport, for callers that need an error rather
// than polyglot's (nil, false) hint-style return — e.g. a CLI subcommand
// exposing this directly.
func errUnsupported(lang string) error {
	return fmt.Errorf("polyglot: unsupported language %q", lang)
}

// MustSupport is a convenience check for callers (diagnostics, hover) that
// want an explicit error instead of a boolean for an unknown fence tag.
func MustSupport(lang string) error {
	if Supported(lang) {
		return nil
	}
	return errUnsupported(lang)
}
