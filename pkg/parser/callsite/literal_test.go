package callsite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"1.50", "1.5"},
		{".5", "0.5"},
		{"0x10", "16"},
		{"0o17", "15"},
		{"0b101", "5"},
		{"010", "8"},
		{"08", "8"},
		{"1_000", "1000"},
		{"10n", "10"},
		{"1e3", "1000"},
		{"1e21", "1e+21"},
		{"1e-7", "1e-7"},
		{"0.000001", "0.000001"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := NumberKey(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberKey_Invalid(t *testing.T) {
	t.Parallel()

	_, ok := NumberKey("")
	assert.False(t, ok)
}

func TestAppendEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		esc  string
		want string
	}{
		{"should decode newline", `\n`, "\n"},
		{"should decode vertical tab", `\v`, "\v"},
		{"should decode nul", `\0`, "\x00"},
		{"should decode hex", `\x41`, "A"},
		{"should decode unicode", `\u00e9`, "é"},
		{"should decode code point", `\u{1F600}`, "😀"},
		{"should decode legacy octal", `\101`, "A"},
		{"should drop line continuation", "\\\n", ""},
		{"should drop crlf line continuation", "\\\r\n", ""},
		{"should keep identity escape", `\q`, "q"},
		{"should keep escaped quote", `\'`, "'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, joinUnits(appendEscape(nil, tt.esc)))
		})
	}
}

func TestJoinUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "😀", joinUnits([]rune{0xD83D, 0xDE00}))
	assert.Equal(t, "a�b", joinUnits([]rune{'a', 0xD83D, 'b'}))
	assert.Equal(t, "�", joinUnits([]rune{0xDE00}))
}
