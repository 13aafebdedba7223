// Package asyoutype formats a phone number while it is being typed, one
// character at a time.
package asyoutype

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/util"
)

// minTemplateDigits is the number of national digits needed before a
// format rule is tried.
const minTemplateDigits = 3

// Formatter is one typing session. It is not safe for concurrent use; give
// every input field its own Formatter.
//
// The output is always recomputed from the digits typed so far, so feeding a
// sequence in pieces yields the same result as feeding it at once. The
// format rule in use changes only when it can no longer hold the digits,
// at which point the whole number is regrouped.
type Formatter struct {
	reg    *registry.Registry
	region *registry.RegionEntry

	international bool
	digits        []byte
	last          string
}

// New starts a session for regionHint. An unknown or empty hint leaves only
// international input formattable.
func New(reg *registry.Registry, regionHint string) *Formatter {
	f := &Formatter{reg: reg}
	if regionHint != "" {
		f.region, _ = reg.Region(regionHint)
	}
	return f
}

// Clear resets the session for a new number.
func (f *Formatter) Clear() {
	f.international = false
	f.digits = f.digits[:0]
	f.last = ""
}

// Result returns the most recently emitted output.
func (f *Formatter) Result() string { return f.last }

// InputDigit feeds one character. Digits in any common script are accepted,
// '+' only as the first character; everything else is ignored and the
// previous output returned.
func (f *Formatter) InputDigit(r rune) string {
	if d, ok := util.FoldDigit(r); ok {
		f.digits = append(f.digits, d)
		f.last = f.render()
		return f.last
	}
	if util.IsPlus(r) && !f.international && len(f.digits) == 0 {
		f.international = true
		f.last = "+"
	}
	return f.last
}

// InputString feeds every character of s in order.
func (f *Formatter) InputString(s string) string {
	for _, r := range s {
		f.InputDigit(r)
	}
	return f.last
}

func (f *Formatter) render() string {
	digits := string(f.digits)
	if f.international {
		return f.renderInternational(digits)
	}
	return f.renderNational(digits)
}

func (f *Formatter) renderInternational(digits string) string {
	cc, rest, ok := f.reg.MatchCallingCode(digits)
	if !ok {
		return "+" + digits
	}
	head := "+" + strconv.Itoa(cc)
	if rest == "" {
		return head
	}
	rule := pick(f.regionFor(cc).Rules(model.StyleInternational), rest)
	if rule == nil {
		return head + " " + rest
	}
	return head + " " + fill(rule.Mask(), rest, "")
}

func (f *Formatter) renderNational(digits string) string {
	if f.region == nil {
		return digits
	}
	prefix, nsn := splitPrefix(f.region.NationalPrefix, digits)
	rule := pick(f.region.Rules(model.StyleNational), nsn)
	if rule == nil {
		return prefix + nsn
	}
	out := fill(rule.Mask(), nsn, prefix)
	if prefix != "" && !strings.ContainsRune(rule.Mask(), registry.PrefixPlaceholder) {
		return prefix + " " + out
	}
	return out
}

// regionFor prefers the session's region when it shares cc.
func (f *Formatter) regionFor(cc int) *registry.RegionEntry {
	if f.region != nil && f.region.CallingCode == cc {
		return f.region
	}
	return f.reg.RegionsForCallingCode(cc)[0]
}

func splitPrefix(np, digits string) (string, string) {
	if np != "" && strings.HasPrefix(digits, np) {
		return np, digits[len(np):]
	}
	return "", digits
}

// pick returns the smallest-capacity rule that admits the digits typed so
// far and can still hold them, the first declared one on ties.
func pick(rules []*registry.FormatRule, nsn string) *registry.FormatRule {
	if len(nsn) < minTemplateDigits {
		return nil
	}
	var best *registry.FormatRule
	for _, r := range rules {
		if !r.Incremental() || r.Capacity() < len(nsn) || !r.AdmitsPartial(nsn) {
			continue
		}
		if best == nil || r.Capacity() < best.Capacity() {
			best = r
		}
	}
	return best
}

// fill writes digits into mask and stops right after the last one. The
// prefix slot takes prefix; when prefix is empty the slot and the spaces
// following it are dropped.
func fill(mask, digits, prefix string) string {
	var sb strings.Builder
	i := 0
	skipSpace := false
	for _, r := range mask {
		if i == len(digits) {
			break
		}
		switch {
		case r == registry.DigitPlaceholder:
			sb.WriteByte(digits[i])
			i++
			skipSpace = false
		case r == registry.PrefixPlaceholder:
			if prefix == "" {
				skipSpace = true
				continue
			}
			sb.WriteString(prefix)
		case skipSpace && unicode.IsSpace(r):
		default:
			skipSpace = false
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
