// Package contact normalizes phone-number-like guest addresses into the
// single canonical form used as the join key across events, RSVPs and the
// reminder ledger.
package contact

import "strings"

const scheme = "whatsapp:"

// Normalize maps a raw address to its canonical form: scheme-prefixed
// input passes through unchanged, a bare +number gains the scheme prefix,
// anything else is left alone apart from whitespace trimming. The function
// is pure and idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, scheme) {
		return s
	}
	if strings.HasPrefix(s, "+") {
		return scheme + s
	}
	return s
}

// Digits strips everything but decimal digits. The owner identity check
// expects a bare number.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
