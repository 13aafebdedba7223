package phonenumber

import (
	"strconv"
	"strings"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

const (
	e164ExtSeparator = ";ext="
	extSeparator     = " ext. "
)

// Format renders n in style. n is expected to be valid; numbers without a
// matching format rule fall back to their plain digits.
func (e *Engine) Format(n Number, style model.FormatStyle) string {
	cc := strconv.Itoa(n.CallingCode)

	var sb strings.Builder
	switch style {
	case model.StyleE164:
		sb.WriteString("+" + cc + n.NationalNumber)
		if n.Extension != "" {
			sb.WriteString(e164ExtSeparator + n.Extension)
		}
		return sb.String()
	case model.StyleInternational:
		sb.WriteString("+" + cc + " ")
	}

	sb.WriteString(e.applyRules(n, style))
	if n.Extension != "" {
		sb.WriteString(extSeparator + n.Extension)
	}
	return sb.String()
}

func (e *Engine) applyRules(n Number, style model.FormatStyle) string {
	entry := e.regionOf(n)
	if entry == nil {
		return n.NationalNumber
	}
	np := ""
	if style == model.StyleNational {
		np = entry.NationalPrefix
	}
	for _, rule := range entry.Rules(style) {
		if out, ok := rule.Apply(n.NationalNumber, np); ok {
			return out
		}
	}
	return n.NationalNumber
}
