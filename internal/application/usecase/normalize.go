package usecase

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
)

var upper = cases.Upper(language.Und)

// normalizeSKU recorta espacios y pasa a mayúsculas.
func normalizeSKU(sku string) string {
	return upper.String(strings.TrimSpace(sku))
}

// cleanText colapsa espacios repetidos y recorta extremos.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// lengthBetween valida longitud en runas.
func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
