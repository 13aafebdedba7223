package model

import "strings"

// NumberType is the line-type category of a phone number.
type NumberType string

const (
	TypeFixedLine      NumberType = "fixedLine"
	TypeMobile         NumberType = "mobile"
	TypeFixedOrMobile  NumberType = "fixedOrMobile"
	TypeTollFree       NumberType = "tollFree"
	TypePremiumRate    NumberType = "premiumRate"
	TypeSharedCost     NumberType = "sharedCost"
	TypeVoip           NumberType = "voip"
	TypePersonalNumber NumberType = "personalNumber"
	TypePager          NumberType = "pager"
	TypeUan            NumberType = "uan"
	TypeVoicemail      NumberType = "voicemail"
	TypeUnknown        NumberType = "unknown"
	TypeNotParsed      NumberType = "notParsed"
)

var numberTypes = []NumberType{
	TypeFixedLine, TypeMobile, TypeFixedOrMobile, TypeTollFree, TypePremiumRate,
	TypeSharedCost, TypeVoip, TypePersonalNumber, TypePager, TypeUan,
	TypeVoicemail, TypeUnknown, TypeNotParsed,
}

func (t NumberType) String() string { return string(t) }

// Classifiable reports whether t may appear as a typed pattern in a
// numbering plan (unknown and notParsed are engine outcomes only).
func (t NumberType) Classifiable() bool {
	return t.Valid() && t != TypeUnknown && t != TypeNotParsed
}

func (t NumberType) Valid() bool {
	for _, v := range numberTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseNumberType accepts the camelCase names case-insensitively.
func ParseNumberType(s string) (NumberType, bool) {
	s = strings.TrimSpace(s)
	for _, v := range numberTypes {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	return TypeUnknown, false
}

// FormatStyle selects the textual rendering of a number.
type FormatStyle string

const (
	StyleE164          FormatStyle = "e164"
	StyleInternational FormatStyle = "international"
	StyleNational      FormatStyle = "national"
)

func (s FormatStyle) String() string { return string(s) }

func (s FormatStyle) Valid() bool {
	return s == StyleE164 || s == StyleInternational || s == StyleNational
}

// ParseResult is the record returned for single and batch parse operations.
// All fields are strings, matching the bridge contract.
type ParseResult struct {
	Type           string `json:"type"`
	E164           string `json:"e164"`
	International  string `json:"international"`
	National       string `json:"national"`
	CountryCode    string `json:"country_code"`
	RegionCode     string `json:"region_code"`
	NationalNumber string `json:"national_number"`
}
