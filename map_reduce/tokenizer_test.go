package map_reduce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{name: "punctuation and digits", line: "Hello, World! 123", want: []string{"hello", "world", "123"}},
		{name: "empty", line: "", want: []string{}},
		{name: "only punctuation", line: "¡¿?!.,;:--()", want: []string{}},
		{name: "only whitespace", line: " \t \r\n", want: []string{}},
		{name: "accented letters", line: "Canción ÑANDÚ pingüino", want: []string{"canción", "ñandú", "pingüino"}},
		{name: "decomposed accent", line: "Cafe\u0301 noir", want: []string{"caf\u00e9", "noir"}},
		{name: "joined by symbols", line: "rock&roll e-mail user@host", want: []string{"rock", "roll", "e", "mail", "user", "host"}},
		{name: "trailing newline", line: "cat dog\n", want: []string{"cat", "dog"}},
		{name: "mixed alnum", line: "R2D2 y C3PO", want: []string{"r2d2", "y", "c3po"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if len(tt.want) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeNeverEmptyTokens(t *testing.T) {
	for _, line := range []string{"  a  ,, b ", "...x...", " y "} {
		for _, tok := range Tokenize(line) {
			require.NotEmpty(t, tok)
		}
	}
}
