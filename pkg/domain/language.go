// Package domain defines the core types for extracted translatable text.
package domain

import "path/filepath"

// Language represents a source grammar family.
type Language string

// Supported source languages.
const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

// DetectLanguage determines the grammar family from a file extension.
// Returns an empty Language for unsupported extensions.
func DetectLanguage(filename string) Language {
	switch filepath.Ext(filename) {
	case ".js", ".jsx":
		return LanguageJavaScript
	case ".ts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	default:
		return ""
	}
}
