package map_reduce

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tokenize lowercases line and splits it into words made of letters and
// digits. Every other rune separates words. Input is NFC-normalized first so
// a decomposed "é" stays one letter.
func Tokenize(line string) []string {
	line = strings.ToLower(strings.TrimSpace(norm.NFC.String(line)))
	return strings.FieldsFunc(line, isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
