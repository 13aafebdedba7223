// Package catalog lists the regions a registry supports, with localized
// display names.
package catalog

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/rohnsht/PhoneNumber/internal/registry"
)

var ErrNoName = errors.New("no display name")

type Region struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Prefix int    `json:"prefix"`
}

// DisplayNamer resolves the name of a region in a locale.
type DisplayNamer interface {
	RegionName(code string, locale language.Tag) (string, error)
}

// CLDRNamer serves names from the CLDR tables bundled with x/text.
type CLDRNamer struct{}

func (CLDRNamer) RegionName(code string, locale language.Tag) (string, error) {
	r, err := language.ParseRegion(code)
	if err != nil {
		return "", err
	}
	namer := display.Regions(locale)
	if namer == nil {
		return "", ErrNoName
	}
	name := namer.Name(r)
	if name == "" {
		return "", ErrNoName
	}
	return name, nil
}

type Catalog struct {
	reg    *registry.Registry
	namer  DisplayNamer
	locale language.Tag
	log    *zap.Logger
}

// New builds a catalog. defaultLocale is used when List gets no locale or
// one that does not parse; it falls back to English itself.
func New(reg *registry.Registry, namer DisplayNamer, defaultLocale string, log *zap.Logger) *Catalog {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{reg: reg, namer: namer, locale: tag, log: log}
}

// List returns every region once, in registry order. A region whose name
// cannot be resolved is listed under its code.
func (c *Catalog) List(locale string) []Region {
	tag := c.Locale(locale)

	regions := c.reg.Regions()
	out := make([]Region, 0, len(regions))
	for _, e := range regions {
		name, err := c.namer.RegionName(e.Code, tag)
		if err != nil || strings.TrimSpace(name) == "" {
			c.log.Debug("region name unresolved", zap.String("region", e.Code), zap.Stringer("locale", tag), zap.Error(err))
			name = e.Code
		}
		out = append(out, Region{Name: name, Code: e.Code, Prefix: e.CallingCode})
	}
	return out
}

// Locale parses a BCP 47 tag, accepting underscores as separators, and
// falls back to the catalog default.
func (c *Catalog) Locale(s string) language.Tag {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" {
		return c.locale
	}
	tag, err := language.Parse(s)
	if err != nil {
		return c.locale
	}
	return tag
}
