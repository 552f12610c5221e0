// Package textnorm normaliza texto para búsquedas: sin tildes, en minúsculas y con
// espacios colapsados. "São Paulo" y "sao  paulo" producen la misma clave.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold devuelve la clave de búsqueda de s.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// FoldState normaliza una UF: sin tildes y en mayúsculas ("sp" → "SP").
func FoldState(s string) string {
	return strings.ToUpper(Fold(s))
}
