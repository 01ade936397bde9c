package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText returns s in Unicode NFC form.
// Song and author names arrive from several tools with mixed normalization;
// storing one form keeps equality lookups on text columns stable.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
