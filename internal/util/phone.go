package util

import (
	"strings"

	"golang.org/x/text/width"
)

// zero code points of the decimal digit scripts users commonly type numbers in.
var digitZeros = []rune{
	'0',
	'٠', // arabic-indic
	'۰', // extended arabic-indic (persian)
	'०', // devanagari
	'০', // bengali
}

// FoldDigit maps r to an ASCII digit. Fullwidth digits are folded first.
func FoldDigit(r rune) (byte, bool) {
	if r >= '０' && r <= '９' {
		r = r - '０' + '0'
	}
	for _, z := range digitZeros {
		if r >= z && r <= z+9 {
			return byte('0' + (r - z)), true
		}
	}
	return 0, false
}

// IsPlus reports whether r is an ASCII or fullwidth plus sign.
func IsPlus(r rune) bool { return r == '+' || r == '＋' }

// NormalizePhone strips everything except digits from raw, folding non-ASCII
// digits, and reports whether a '+' came before the first digit.
func NormalizePhone(raw string) (digits string, plus bool) {
	s := width.Fold.String(strings.TrimSpace(raw))

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if d, ok := FoldDigit(r); ok {
			sb.WriteByte(d)
			continue
		}
		if sb.Len() == 0 && IsPlus(r) {
			plus = true
		}
	}
	return sb.String(), plus
}
