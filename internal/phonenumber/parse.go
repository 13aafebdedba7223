package phonenumber

import (
	"regexp"
	"strings"

	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/util"
	"golang.org/x/text/width"
)

const (
	minNationalLength = 2
	maxNationalLength = 17
)

// extension is matched at the end of the input: ";ext=123", "ext. 123",
// "extension 123", "x123" or "#123".
var extension = regexp.MustCompile(`(?i)(?:;\s*ext=|\s*(?:extension|ext\.?|x|#))\s*(\d{1,7})#?\s*$`)

// Parse turns raw text into a Number. regionHint is required unless the
// text carries a leading '+' (or the hint region's international dialling
// prefix). Parse does not validate; see IsValid.
func (e *Engine) Parse(text, regionHint string) (Number, error) {
	text = width.Fold.String(strings.TrimSpace(text))
	if len(text) >= 4 && strings.EqualFold(text[:4], "tel:") {
		text = text[4:]
	}

	var ext string
	if loc := extension.FindStringSubmatchIndex(text); loc != nil {
		ext = text[loc[2]:loc[3]]
		text = text[:loc[0]]
	}

	digits, plus := util.NormalizePhone(text)
	if digits == "" {
		return Number{}, ErrNoDigits
	}

	var hint *registry.RegionEntry
	if regionHint != "" {
		if h, ok := e.reg.Region(regionHint); ok {
			hint = h
		} else if !plus {
			return Number{}, ErrUnknownRegion
		}
	}

	cc := 0
	if !plus {
		if hint == nil {
			return Number{}, ErrMissingRegion
		}
		if rest, ok := hint.StripInternationalPrefix(digits); ok && rest != "" {
			plus = true
			digits = rest
		} else {
			cc = hint.CallingCode
		}
	}
	if plus {
		var ok bool
		if cc, digits, ok = e.reg.MatchCallingCode(digits); !ok {
			return Number{}, ErrUnknownCallingCode
		}
	}

	entry, nsn := e.resolve(cc, hint, digits)
	switch {
	case len(nsn) < minNationalLength:
		return Number{}, ErrTooShort
	case len(nsn) > maxNationalLength:
		return Number{}, ErrTooLong
	}

	return Number{
		CallingCode:    cc,
		NationalNumber: nsn,
		Region:         entry.Code,
		Extension:      ext,
	}, nil
}

// resolve picks the region for digits among those sharing cc, trying the
// hint first, and strips that region's national prefix.
func (e *Engine) resolve(cc int, hint *registry.RegionEntry, digits string) (*registry.RegionEntry, string) {
	cands := e.reg.RegionsForCallingCode(cc)
	ordered := make([]*registry.RegionEntry, 0, len(cands))
	if hint != nil && hint.CallingCode == cc {
		ordered = append(ordered, hint)
	}
	for _, c := range cands {
		if c != hint {
			ordered = append(ordered, c)
		}
	}

	for _, c := range ordered {
		if nsn := stripNationalPrefix(c, digits); c.Plausible(nsn) {
			return c, nsn
		}
	}
	return ordered[0], stripNationalPrefix(ordered[0], digits)
}

// stripNationalPrefix removes the region's national prefix from the start
// of digits, unless that would leave nothing or digits is already a
// plausible number as typed.
func stripNationalPrefix(entry *registry.RegionEntry, digits string) string {
	np := entry.NationalPrefix
	if np == "" || !strings.HasPrefix(digits, np) || len(digits) == len(np) {
		return digits
	}
	if entry.Plausible(digits) {
		return digits
	}
	return digits[len(np):]
}
