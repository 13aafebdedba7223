package phonenumber

import (
	"strconv"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

// Result bundles the classification and all renderings of n. An invalid
// number is reported with type notParsed.
func (e *Engine) Result(n Number) model.ParseResult {
	region := n.Region
	if entry := e.regionOf(n); entry != nil {
		region = entry.Code
	}
	return model.ParseResult{
		Type:           e.Classify(n).String(),
		E164:           e.Format(n, model.StyleE164),
		International:  e.Format(n, model.StyleInternational),
		National:       e.Format(n, model.StyleNational),
		CountryCode:    strconv.Itoa(n.CallingCode),
		RegionCode:     region,
		NationalNumber: n.NationalNumber,
	}
}
