package phonenumber

import "strings"

// IsValid reports whether n is a plausible number. With a region hint the
// number must also belong to that region.
func (e *Engine) IsValid(n Number, regionHint string) bool {
	entry := e.regionOf(n)
	if entry == nil {
		return false
	}
	if regionHint != "" && !strings.EqualFold(strings.TrimSpace(regionHint), entry.Code) {
		return false
	}
	return entry.Plausible(n.NationalNumber)
}
