package phonenumber

import "github.com/rohnsht/PhoneNumber/internal/model"

// Classify returns the line type of n: the type of the first typed pattern,
// in the region's declared order, that accepts the national number.
// Invalid numbers are notParsed; valid numbers no rule accepts are unknown.
func (e *Engine) Classify(n Number) model.NumberType {
	if !e.IsValid(n, "") {
		return model.TypeNotParsed
	}
	for _, p := range e.regionOf(n).TypedPatterns {
		if p.Accepts(n.NationalNumber) {
			return p.Type
		}
	}
	return model.TypeUnknown
}
