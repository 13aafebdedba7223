// Package registry holds the numbering plan dataset: one immutable entry per
// region, loaded once and shared read-only by every engine component.
package registry

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmpty = errors.New("registry has no regions")

// Registry is safe for concurrent use; nothing mutates it after New.
type Registry struct {
	version       string
	regions       []*RegionEntry
	byCode        map[string]*RegionEntry
	byCallingCode map[int][]*RegionEntry
	maxCodeDigits int
}

// New builds a registry from entries in declared order.
func New(version string, entries ...*RegionEntry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	r := &Registry{
		version:       version,
		regions:       make([]*RegionEntry, 0, len(entries)),
		byCode:        make(map[string]*RegionEntry, len(entries)),
		byCallingCode: make(map[int][]*RegionEntry),
	}
	for _, e := range entries {
		if e == nil {
			return nil, fmt.Errorf("nil region entry")
		}
		if _, dup := r.byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate region %s", e.Code)
		}
		r.regions = append(r.regions, e)
		r.byCode[e.Code] = e
		r.byCallingCode[e.CallingCode] = append(r.byCallingCode[e.CallingCode], e)
		if n := len(fmt.Sprint(e.CallingCode)); n > r.maxCodeDigits {
			r.maxCodeDigits = n
		}
	}
	return r, nil
}

// FromSpecs compiles specs and builds a registry.
func FromSpecs(version string, specs ...RegionSpec) (*Registry, error) {
	entries := make([]*RegionEntry, 0, len(specs))
	for _, s := range specs {
		e, err := NewRegionEntry(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return New(version, entries...)
}

// Version is the dataset version string.
func (r *Registry) Version() string { return r.version }

// Len is the number of regions.
func (r *Registry) Len() int { return len(r.regions) }

// Regions returns every entry in declared order.
func (r *Registry) Regions() []*RegionEntry {
	out := make([]*RegionEntry, len(r.regions))
	copy(out, r.regions)
	return out
}

// Region looks up a region code case-insensitively.
func (r *Registry) Region(code string) (*RegionEntry, bool) {
	e, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return e, ok
}

// RegionsForCallingCode returns the regions sharing cc in declared order;
// the first one is the calling code's main region.
func (r *Registry) RegionsForCallingCode(cc int) []*RegionEntry {
	return r.byCallingCode[cc]
}

// HasCallingCode reports whether any region uses cc.
func (r *Registry) HasCallingCode(cc int) bool {
	return len(r.byCallingCode[cc]) > 0
}

// MatchCallingCode finds the longest known calling code at the start of
// digits and returns it with the remaining digits.
func (r *Registry) MatchCallingCode(digits string) (cc int, rest string, ok bool) {
	max := r.maxCodeDigits
	if len(digits) < max {
		max = len(digits)
	}
	for n := max; n >= 1; n-- {
		if digits[0] == '0' {
			break
		}
		v := 0
		for _, c := range digits[:n] {
			v = v*10 + int(c-'0')
		}
		if r.HasCallingCode(v) {
			return v, digits[n:], true
		}
	}
	return 0, digits, false
}
