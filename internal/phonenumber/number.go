// Package phonenumber interprets phone number text against a numbering plan
// registry: parsing, validation, line-type classification and rendering.
//
// Every function is pure over the registry it was given, so one Engine can
// serve any number of goroutines.
package phonenumber

import "github.com/rohnsht/PhoneNumber/internal/registry"

// Number is a structurally parsed phone number. NationalNumber holds the
// national significant number as digits, so leading zeros survive; it never
// contains the calling code or the national prefix.
type Number struct {
	CallingCode    int
	NationalNumber string
	Region         string
	Extension      string
}

// Engine binds the parser, validator, classifier and renderer to a registry.
type Engine struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the registry the engine reads from.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// regionOf resolves the registry entry governing n: its own region when set
// and consistent with the calling code, otherwise the first region sharing
// the calling code that finds n plausible, otherwise the main region.
func (e *Engine) regionOf(n Number) *registry.RegionEntry {
	if n.Region != "" {
		if entry, ok := e.reg.Region(n.Region); ok && entry.CallingCode == n.CallingCode {
			return entry
		}
	}
	cands := e.reg.RegionsForCallingCode(n.CallingCode)
	for _, c := range cands {
		if c.Plausible(n.NationalNumber) {
			return c
		}
	}
	if len(cands) > 0 {
		return cands[0]
	}
	return nil
}
