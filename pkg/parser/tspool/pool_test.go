package tspool_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/blendin/extractor/pkg/domain"
	"github.com/blendin/extractor/pkg/parser/tspool"
)

func TestParse_RaceFree(t *testing.T) {
	t.Parallel()

	const goroutines = 50
	source := []byte("const x = t('hello');")

	var wg sync.WaitGroup
	wg.Add(goroutines)

	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			tree, err := tspool.Parse(context.Background(), domain.LanguageTypeScript, source)
			if err != nil {
				errCh <- err
				return
			}
			defer tree.Close()
		}()
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Parse failed: %v", err)
	}
}

func TestGetLanguage_ReturnsCorrectLanguages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lang domain.Language
	}{
		{"JavaScript", domain.LanguageJavaScript},
		{"TypeScript", domain.LanguageTypeScript},
		{"TSX", domain.LanguageTSX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if lang := tspool.GetLanguage(tt.lang); lang == nil {
				t.Errorf("GetLanguage(%v) returned nil", tt.lang)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		source   string
		wantLang domain.Language
	}{
		{
			name:     "should parse plain javascript",
			filename: "app.js",
			source:   "const a = t('Hello');",
			wantLang: domain.LanguageJavaScript,
		},
		{
			name:     "should parse jsx with javascript grammar",
			filename: "App.jsx",
			source:   "export const App = () => <div title={t('Title')}>{t('Body')}</div>;",
			wantLang: domain.LanguageJavaScript,
		},
		{
			name:     "should parse type annotations",
			filename: "util.ts",
			source:   "export function greet(name: string): string { return t('Hi'); }",
			wantLang: domain.LanguageTypeScript,
		},
		{
			name:     "should parse tsx",
			filename: "App.tsx",
			source:   "const App: React.FC<Props> = ({ n }: Props) => <span>{t('x')}</span>;",
			wantLang: domain.LanguageTSX,
		},
		{
			name:     "should fall back to tsx for typed jsx in js file",
			filename: "Mixed.js",
			source:   "const App = (p: Props): JSX.Element => <b>{t('x')}</b>;",
			wantLang: domain.LanguageTSX,
		},
		{
			name:     "should ignore leading byte order mark",
			filename: "bom.js",
			source:   "\ufefft('Hello');",
			wantLang: domain.LanguageJavaScript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := tspool.ParseFile(context.Background(), tt.filename, []byte(tt.source))
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			defer parsed.Close()

			if parsed.Language != tt.wantLang {
				t.Errorf("Language = %q, want %q", parsed.Language, tt.wantLang)
			}
			if parsed.Root().HasError() {
				t.Error("expected error-free tree")
			}
		})
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	t.Parallel()

	source := []byte("const ok = t('fine');\nfunction broken( {\n")

	parsed, err := tspool.ParseFile(context.Background(), "broken.js", source)
	if err == nil {
		parsed.Close()
		t.Fatal("expected syntax error")
	}

	if !errors.Is(err, tspool.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}

	var syntaxErr *tspool.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if syntaxErr.Line < 2 {
		t.Errorf("Line = %d, want error reported on line 2 or later", syntaxErr.Line)
	}
	if syntaxErr.Language != domain.LanguageJavaScript {
		t.Errorf("Language = %q, want first candidate %q", syntaxErr.Language, domain.LanguageJavaScript)
	}
}

func TestParseFile_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, err := tspool.ParseFile(context.Background(), "style.css", []byte("a{}"))
	if !errors.Is(err, tspool.ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	source := []byte("t('a'); t('b');")
	tree, err := tspool.Parse(context.Background(), domain.LanguageJavaScript, source)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer tree.Close()

	var strings []string
	tspool.Walk(tree.RootNode(), func(n *sitter.Node) bool {
		if n.Type() == "string" {
			strings = append(strings, tspool.GetNodeText(n, source))
			return false
		}
		return true
	})

	if len(strings) != 2 || strings[0] != "'a'" || strings[1] != "'b'" {
		t.Errorf("Walk visited strings %v, want ['a' 'b']", strings)
	}
}
