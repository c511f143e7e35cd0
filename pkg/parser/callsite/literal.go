package callsite

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/blendin/extractor/pkg/parser/tspool"
)

// CookString returns the value of a JavaScript string literal node:
// fragments verbatim, escape sequences decoded, surrogate pair escapes
// combined. Lone surrogates become U+FFFD.
func CookString(node *sitter.Node, source []byte) string {
	if node.NamedChildCount() == 0 {
		return unquote(tspool.GetNodeText(node, source))
	}

	var units []rune
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		text := tspool.GetNodeText(child, source)
		switch child.Type() {
		case "string_fragment":
			units = append(units, []rune(text)...)
		case "escape_sequence":
			units = appendEscape(units, text)
		}
	}

	return joinUnits(units)
}

func unquote(text string) string {
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		return text[1 : len(text)-1]
	}
	return text
}

// appendEscape decodes one escape sequence (including the backslash).
func appendEscape(units []rune, esc string) []rune {
	if len(esc) < 2 || esc[0] != '\\' {
		return append(units, []rune(esc)...)
	}
	body := esc[1:]

	switch body[0] {
	case 'n':
		return append(units, '\n')
	case 't':
		return append(units, '\t')
	case 'r':
		return append(units, '\r')
	case 'b':
		return append(units, '\b')
	case 'f':
		return append(units, '\f')
	case 'v':
		return append(units, '\v')
	case '\n', '\r':
		// line continuation
		return units
	case 'x':
		if v, err := strconv.ParseUint(body[1:], 16, 32); err == nil && len(body) == 3 {
			return append(units, rune(v))
		}
	case 'u':
		hex := body[1:]
		if strings.HasPrefix(hex, "{") && strings.HasSuffix(hex, "}") {
			hex = hex[1 : len(hex)-1]
		} else if len(hex) != 4 {
			break
		}
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil && v <= utf8.MaxRune {
			return append(units, rune(v))
		}
	case '0', '1', '2', '3', '4', '5', '6', '7':
		if v, err := strconv.ParseUint(body, 8, 32); err == nil && v <= 0xff {
			return append(units, rune(v))
		}
	}

	r, _ := utf8.DecodeRuneInString(body)
	if r == '\u2028' || r == '\u2029' {
		return units
	}
	return append(units, []rune(body)...)
}

// joinUnits builds a string from runes that may contain UTF-16 surrogate halves.
func joinUnits(units []rune) string {
	var b strings.Builder
	b.Grow(len(units))

	for i := 0; i < len(units); i++ {
		r := units[i]
		if utf16.IsSurrogate(r) {
			if i+1 < len(units) {
				if dec := utf16.DecodeRune(r, units[i+1]); dec != utf8.RuneError {
					b.WriteRune(dec)
					i++
					continue
				}
			}
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// NumberKey normalizes a numeric property key to the string an object
// literal would store it under (`0x10` → "16", `1.50` → "1.5", `1e21` → "1e+21").
func NumberKey(text string) (string, bool) {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "_", ""), "n")
	if text == "" {
		return "", false
	}

	if len(text) > 1 && text[0] == '0' && isRadixPrefix(text[1]) {
		v, err := strconv.ParseUint(text, 0, 64)
		if err != nil {
			return "", false
		}
		return formatJSNumber(float64(v)), true
	}

	if len(text) > 1 && text[0] == '0' && isOctalDigits(text[1:]) {
		// legacy octal literal
		v, err := strconv.ParseUint(text[1:], 8, 64)
		if err != nil {
			return "", false
		}
		return formatJSNumber(float64(v)), true
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return "", false
	}
	return formatJSNumber(f), true
}

func isRadixPrefix(c byte) bool {
	switch c {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

func isOctalDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return s != ""
}

// formatJSNumber renders f the way Number.prototype.toString does.
func formatJSNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
