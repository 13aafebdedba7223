// Package conformance compares what the engine derives from the dataset's
// example numbers with an independent oracle (libphonenumber by default).
package conformance

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nyaruka/phonenumbers"

	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
)

// Observation is what one implementation reports about a number.
type Observation struct {
	E164          string
	International string
	National      string
	Region        string
	Valid         bool
	Type          model.NumberType
}

type Oracle interface {
	Observe(e164 string) (Observation, error)
}

// LibPhoneNumber answers from github.com/nyaruka/phonenumbers metadata.
type LibPhoneNumber struct{}

var libTypes = map[phonenumbers.PhoneNumberType]model.NumberType{
	phonenumbers.FIXED_LINE:           model.TypeFixedLine,
	phonenumbers.MOBILE:               model.TypeMobile,
	phonenumbers.FIXED_LINE_OR_MOBILE: model.TypeFixedOrMobile,
	phonenumbers.TOLL_FREE:            model.TypeTollFree,
	phonenumbers.PREMIUM_RATE:         model.TypePremiumRate,
	phonenumbers.SHARED_COST:          model.TypeSharedCost,
	phonenumbers.VOIP:                 model.TypeVoip,
	phonenumbers.PERSONAL_NUMBER:      model.TypePersonalNumber,
	phonenumbers.PAGER:                model.TypePager,
	phonenumbers.UAN:                  model.TypeUan,
	phonenumbers.VOICEMAIL:            model.TypeVoicemail,
}

func (LibPhoneNumber) Observe(e164 string) (Observation, error) {
	num, err := phonenumbers.Parse(e164, "")
	if err != nil {
		return Observation{}, fmt.Errorf("libphonenumber parse %s: %w", e164, err)
	}
	typ, ok := libTypes[phonenumbers.GetNumberType(num)]
	if !ok {
		typ = model.TypeUnknown
	}
	valid := phonenumbers.IsValidNumber(num)
	if !valid {
		typ = model.TypeNotParsed
	}
	return Observation{
		E164:          phonenumbers.Format(num, phonenumbers.E164),
		International: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
		National:      phonenumbers.Format(num, phonenumbers.NATIONAL),
		Region:        phonenumbers.GetRegionCodeForNumber(num),
		Valid:         valid,
		Type:          typ,
	}, nil
}

// Mismatch is one field on which the engine and the oracle disagree.
type Mismatch struct {
	Region string
	Type   model.NumberType
	Number string
	Field  string
	Engine string
	Oracle string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s/%s %s: %s engine=%q oracle=%q", m.Region, m.Type, m.Number, m.Field, m.Engine, m.Oracle)
}

type Report struct {
	Checked    int
	Mismatches []Mismatch
	Errors     []error
}

func (r Report) OK() bool { return len(r.Mismatches) == 0 && len(r.Errors) == 0 }

// Check observes every dataset example through the engine and the oracle.
// Examples are visited in registry order, types sorted by name.
func Check(e *phonenumber.Engine, oracle Oracle) Report {
	var rep Report
	for _, entry := range e.Registry().Regions() {
		types := make([]model.NumberType, 0, len(entry.Examples))
		for t := range entry.Examples {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		for _, typ := range types {
			n := phonenumber.Number{
				CallingCode:    entry.CallingCode,
				NationalNumber: entry.Examples[typ],
				Region:         entry.Code,
			}
			ours := observe(e, n)

			theirs, err := oracle.Observe(ours.E164)
			rep.Checked++
			if err != nil {
				rep.Errors = append(rep.Errors, fmt.Errorf("%s/%s: %w", entry.Code, typ, err))
				continue
			}
			rep.Mismatches = append(rep.Mismatches, diff(entry.Code, typ, ours, theirs)...)
		}
	}
	return rep
}

func observe(e *phonenumber.Engine, n phonenumber.Number) Observation {
	valid := e.IsValid(n, "")
	region := ""
	if valid {
		region = n.Region
	}
	return Observation{
		E164:          e.Format(n, model.StyleE164),
		International: e.Format(n, model.StyleInternational),
		National:      e.Format(n, model.StyleNational),
		Region:        region,
		Valid:         valid,
		Type:          e.Classify(n),
	}
}

func diff(region string, typ model.NumberType, ours, theirs Observation) []Mismatch {
	var out []Mismatch
	add := func(field, a, b string) {
		if a != b {
			out = append(out, Mismatch{Region: region, Type: typ, Number: ours.E164, Field: field, Engine: a, Oracle: b})
		}
	}
	add("e164", ours.E164, theirs.E164)
	add("valid", strconv.FormatBool(ours.Valid), strconv.FormatBool(theirs.Valid))
	add("region", ours.Region, theirs.Region)
	add("type", ours.Type.String(), theirs.Type.String())
	add("international", ours.International, theirs.International)
	add("national", ours.National, theirs.National)
	return out
}
