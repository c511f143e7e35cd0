// Package tspool provides tree-sitter parsers for concurrent parsing.
//
// Parsers are created fresh for every parse. When a context is cancelled
// during ParseCtx, the parser's internal cancel flag is set but not reset,
// which makes a reused parser fail subsequent parses with
// "operation limit was hit".
//
// Thread-safety: Parsers returned by Get are NOT safe for concurrent use.
// Each goroutine must Get its own parser or use the Parse helpers.
package tspool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/blendin/extractor/pkg/domain"
)

var (
	// ErrSyntax is wrapped by every SyntaxError.
	ErrSyntax = errors.New("tspool: syntax error")
	// ErrUnsupportedLanguage is returned for files with no known grammar.
	ErrUnsupportedLanguage = errors.New("tspool: unsupported language")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	jsLang  *sitter.Language
	tsLang  *sitter.Language
	tsxLang *sitter.Language

	langOnce sync.Once
)

func initLanguages() {
	langOnce.Do(func() {
		jsLang = javascript.GetLanguage()
		tsLang = typescript.GetLanguage()
		tsxLang = tsx.GetLanguage()
	})
}

// GetLanguage returns the tree-sitter language for the given domain language.
func GetLanguage(lang domain.Language) *sitter.Language {
	initLanguages()
	switch lang {
	case domain.LanguageJavaScript:
		return jsLang
	case domain.LanguageTypeScript:
		return tsLang
	default:
		return tsxLang
	}
}

// Candidates returns the grammars tried for lang, in order.
// Plain JavaScript and TypeScript fall back to TSX so that files mixing
// JSX with type annotations still parse.
func Candidates(lang domain.Language) []domain.Language {
	switch lang {
	case domain.LanguageJavaScript:
		return []domain.Language{domain.LanguageJavaScript, domain.LanguageTSX}
	case domain.LanguageTypeScript:
		return []domain.Language{domain.LanguageTypeScript, domain.LanguageTSX}
	case domain.LanguageTSX:
		return []domain.Language{domain.LanguageTSX}
	default:
		return nil
	}
}

// Get returns a parser for the given language.
// The returned parser is NOT safe for concurrent use.
// Caller MUST call parser.Close() when done to free resources.
func Get(lang domain.Language) *sitter.Parser {
	initLanguages()
	parser := sitter.NewParser()
	parser.SetLanguage(GetLanguage(lang))
	return parser
}

// Parse parses source using a fresh parser.
// Caller MUST call tree.Close() to free resources.
func Parse(ctx context.Context, lang domain.Language, source []byte) (*sitter.Tree, error) {
	parser := Get(lang)
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", lang, err)
	}

	return tree, nil
}

// SyntaxError reports the first error node of a file that no candidate
// grammar could parse cleanly.
type SyntaxError struct {
	Language domain.Language
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d (%s)", e.Line, e.Column, e.Language)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parsed is an error-free tree together with the grammar that produced it.
type Parsed struct {
	Tree     *sitter.Tree
	Language domain.Language
	// Source is the text the tree refers to, without a leading BOM.
	Source []byte
}

// Root returns the tree's root node.
func (p *Parsed) Root() *sitter.Node {
	return p.Tree.RootNode()
}

// Close frees the tree.
func (p *Parsed) Close() {
	if p.Tree != nil {
		p.Tree.Close()
	}
}

// ParseFile parses source with the grammars selected by filename's extension
// and returns the first tree without error nodes. If every candidate fails,
// the returned error is a *SyntaxError for the first candidate.
// Caller MUST call Close on the result.
func ParseFile(ctx context.Context, filename string, source []byte) (*Parsed, error) {
	lang := domain.DetectLanguage(filename)
	candidates := Candidates(lang)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}

	source = bytes.TrimPrefix(source, utf8BOM)

	var firstErr *SyntaxError
	for _, cand := range candidates {
		tree, err := Parse(ctx, cand, source)
		if err != nil {
			return nil, err
		}

		root := tree.RootNode()
		if !root.HasError() {
			return &Parsed{Tree: tree, Language: cand, Source: source}, nil
		}

		if firstErr == nil {
			firstErr = &SyntaxError{Language: cand, Line: 1, Column: 1}
			if node := FirstError(root); node != nil {
				p := node.StartPoint()
				firstErr.Line = int(p.Row) + 1
				firstErr.Column = int(p.Column) + 1
			}
		}
		tree.Close()
	}

	return nil, firstErr
}
