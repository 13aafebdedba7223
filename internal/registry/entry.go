package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

const (
	// DigitPlaceholder marks a digit slot in a format mask.
	DigitPlaceholder = '\u2008'
	// PrefixPlaceholder marks where the national prefix goes in a format mask.
	PrefixPlaceholder = '\u2009'

	// maskSource is matched against format patterns to derive their shape.
	maskSource = "99999999999999999"
)

// LengthRange is an inclusive range of national significant number lengths.
type LengthRange struct {
	Min int
	Max int
}

func (r LengthRange) Contains(n int) bool { return n >= r.Min && n <= r.Max }

func parseLengthRange(s string) (LengthRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	min, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return LengthRange{}, fmt.Errorf("length %q: %w", s, err)
	}
	max := min
	if found {
		if max, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return LengthRange{}, fmt.Errorf("length %q: %w", s, err)
		}
	}
	if min <= 0 || max < min {
		return LengthRange{}, fmt.Errorf("length %q: invalid range", s)
	}
	return LengthRange{Min: min, Max: max}, nil
}

// TypedPattern is a classification rule: numbers fully matching Pattern are
// of Type, provided their length is in Lengths (when Lengths is non-empty).
type TypedPattern struct {
	Type    model.NumberType
	Lengths []int
	re      *regexp.Regexp
}

// Matches reports whether nsn fully matches the rule's digit grammar.
func (p *TypedPattern) Matches(nsn string) bool { return p.re.MatchString(nsn) }

// Accepts is Matches plus the rule's own length restriction.
func (p *TypedPattern) Accepts(nsn string) bool {
	if !p.Matches(nsn) {
		return false
	}
	if len(p.Lengths) == 0 {
		return true
	}
	for _, l := range p.Lengths {
		if l == len(nsn) {
			return true
		}
	}
	return false
}

func (p *TypedPattern) String() string { return p.re.String() }

// FormatRule renders a national significant number through a template.
// Template tokens: $1..$9 substitute capture groups, $NP the national prefix.
type FormatRule struct {
	Template string
	Leading  []string

	full     *regexp.Regexp
	mask     string
	capacity int
}

// AdmitsNumber reports whether a complete number starts with one of the
// rule's leading digit prefixes.
func (f *FormatRule) AdmitsNumber(nsn string) bool {
	if len(f.Leading) == 0 {
		return true
	}
	for _, p := range f.Leading {
		if strings.HasPrefix(nsn, p) {
			return true
		}
	}
	return false
}

// AdmitsPartial is AdmitsNumber for a number still being typed: a prefix
// longer than what has been typed so far stays admissible.
func (f *FormatRule) AdmitsPartial(digits string) bool {
	if len(f.Leading) == 0 {
		return true
	}
	for _, p := range f.Leading {
		if strings.HasPrefix(digits, p) || strings.HasPrefix(p, digits) {
			return true
		}
	}
	return false
}

// Apply formats nsn when the rule admits it, using np for $NP.
func (f *FormatRule) Apply(nsn, np string) (string, bool) {
	if !f.AdmitsNumber(nsn) {
		return "", false
	}
	groups := f.full.FindStringSubmatch(nsn)
	if groups == nil {
		return "", false
	}
	return expand(f.Template, groups, np), true
}

// Mask is the template applied to a placeholder number of maximum length:
// digit slots are DigitPlaceholder and $NP is PrefixPlaceholder.
func (f *FormatRule) Mask() string { return f.mask }

// Capacity is the number of digit slots in Mask.
func (f *FormatRule) Capacity() int { return f.capacity }

// Incremental reports whether the rule has a mask the as-you-type formatter
// can fill.
func (f *FormatRule) Incremental() bool { return f.mask != "" }

func (f *FormatRule) String() string { return f.full.String() + " -> " + f.Template }

func expand(template string, groups []string, np string) string {
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			sb.WriteByte(c)
			continue
		}
		next := template[i+1]
		switch {
		case next >= '1' && next <= '9':
			if idx := int(next - '0'); idx < len(groups) {
				sb.WriteString(groups[idx])
			}
			i++
		case strings.HasPrefix(template[i+1:], "NP"):
			sb.WriteString(np)
			i += 2
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// RegionEntry is one row of the numbering plan registry.
type RegionEntry struct {
	Code                  string
	CallingCode           int
	NationalPrefix        string
	InternationalPrefixes []string
	LengthRanges          []LengthRange
	TypedPatterns         []*TypedPattern
	Formats               map[model.FormatStyle][]*FormatRule
	Examples              map[model.NumberType]string
}

// PossibleLength reports whether n is within one of the region's ranges.
func (e *RegionEntry) PossibleLength(n int) bool {
	for _, r := range e.LengthRanges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// MatchesAnyPattern reports whether nsn matches at least one typed pattern.
func (e *RegionEntry) MatchesAnyPattern(nsn string) bool {
	for _, p := range e.TypedPatterns {
		if p.Matches(nsn) {
			return true
		}
	}
	return false
}

// Plausible is the length+pattern test used for validation.
func (e *RegionEntry) Plausible(nsn string) bool {
	return e.PossibleLength(len(nsn)) && e.MatchesAnyPattern(nsn)
}

// Rules returns the ordered format rules for style.
func (e *RegionEntry) Rules(style model.FormatStyle) []*FormatRule {
	return e.Formats[style]
}

// StripInternationalPrefix removes the longest international dialling
// prefix found at the start of digits.
func (e *RegionEntry) StripInternationalPrefix(digits string) (string, bool) {
	best := ""
	for _, p := range e.InternationalPrefixes {
		if len(p) > len(best) && strings.HasPrefix(digits, p) {
			best = p
		}
	}
	if best == "" {
		return digits, false
	}
	return digits[len(best):], true
}

// RegionSpec is the declarative form of a RegionEntry, as stored in the
// dataset file.
type RegionSpec struct {
	Code                  string                  `yaml:"code"`
	CallingCode           int                     `yaml:"calling_code"`
	NationalPrefix        string                  `yaml:"national_prefix"`
	InternationalPrefixes []string                `yaml:"international_prefixes"`
	Lengths               []string                `yaml:"lengths"`
	Types                 []TypeSpec              `yaml:"types"`
	Formats               map[string][]FormatSpec `yaml:"formats"`
	Examples              map[string]string       `yaml:"examples"`
}

type TypeSpec struct {
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
	Lengths []int  `yaml:"lengths"`
}

type FormatSpec struct {
	Pattern  string   `yaml:"pattern"`
	Template string   `yaml:"template"`
	Leading  []string `yaml:"leading"`
}

// NewRegionEntry compiles a RegionSpec. Whitespace inside patterns is ignored so
// long alternations can be wrapped in the dataset.
func NewRegionEntry(s RegionSpec) (*RegionEntry, error) {
	code := strings.ToUpper(strings.TrimSpace(s.Code))
	if len(code) != 2 {
		return nil, fmt.Errorf("region %q: code must have two letters", s.Code)
	}
	if s.CallingCode <= 0 || s.CallingCode > 999 {
		return nil, fmt.Errorf("region %s: invalid calling code %d", code, s.CallingCode)
	}
	if len(s.Lengths) == 0 {
		return nil, fmt.Errorf("region %s: no lengths", code)
	}
	if len(s.Types) == 0 {
		return nil, fmt.Errorf("region %s: no typed patterns", code)
	}

	e := &RegionEntry{
		Code:                  code,
		CallingCode:           s.CallingCode,
		NationalPrefix:        strings.TrimSpace(s.NationalPrefix),
		InternationalPrefixes: s.InternationalPrefixes,
		Formats:               make(map[model.FormatStyle][]*FormatRule, 2),
		Examples:              make(map[model.NumberType]string, len(s.Examples)),
	}

	for _, l := range s.Lengths {
		r, err := parseLengthRange(l)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", code, err)
		}
		e.LengthRanges = append(e.LengthRanges, r)
	}
	sort.Slice(e.LengthRanges, func(i, j int) bool { return e.LengthRanges[i].Min < e.LengthRanges[j].Min })

	for i, ts := range s.Types {
		t, ok := model.ParseNumberType(ts.Type)
		if !ok || !t.Classifiable() {
			return nil, fmt.Errorf("region %s: types[%d]: invalid type %q", code, i, ts.Type)
		}
		re, err := compileFull(ts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("region %s: types[%d]: %w", code, i, err)
		}
		e.TypedPatterns = append(e.TypedPatterns, &TypedPattern{Type: t, Lengths: ts.Lengths, re: re})
	}

	for name, rules := range s.Formats {
		style := model.FormatStyle(strings.ToLower(name))
		if style != model.StyleNational && style != model.StyleInternational {
			return nil, fmt.Errorf("region %s: unknown format style %q", code, name)
		}
		for i, fs := range rules {
			rule, err := newFormatRule(fs)
			if err != nil {
				return nil, fmt.Errorf("region %s: formats.%s[%d]: %w", code, style, i, err)
			}
			e.Formats[style] = append(e.Formats[style], rule)
		}
	}

	for name, nsn := range s.Examples {
		t, ok := model.ParseNumberType(name)
		if !ok || !t.Classifiable() {
			return nil, fmt.Errorf("region %s: example for invalid type %q", code, name)
		}
		e.Examples[t] = nsn
	}

	return e, nil
}

func newFormatRule(fs FormatSpec) (*FormatRule, error) {
	if strings.TrimSpace(fs.Template) == "" {
		return nil, fmt.Errorf("empty template")
	}
	full, err := compileFull(fs.Pattern)
	if err != nil {
		return nil, err
	}
	prefix, err := regexp.Compile("^(?:" + stripSpace(fs.Pattern) + ")")
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", fs.Pattern, err)
	}

	rule := &FormatRule{
		Template: fs.Template,
		Leading:  fs.Leading,
		full:     full,
	}

	// Patterns with literal digits other than 9 have no mask; the rule
	// still renders complete numbers but is never an as-you-type candidate.
	groups := prefix.FindStringSubmatch(maskSource)
	if groups == nil {
		return rule, nil
	}
	slots := make([]string, len(groups))
	for i, g := range groups {
		slots[i] = strings.Repeat(string(DigitPlaceholder), len(g))
	}
	rule.mask = expand(fs.Template, slots, string(PrefixPlaceholder))
	rule.capacity = strings.Count(rule.mask, string(DigitPlaceholder))
	return rule, nil
}

func compileFull(pattern string) (*regexp.Regexp, error) {
	p := stripSpace(pattern)
	if p == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp.Compile("^(?:" + p + ")$")
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return re, nil
}

func stripSpace(s string) string { return strings.Join(strings.Fields(s), "") }
