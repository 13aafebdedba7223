// Package phone exposes the engine operations to the bridges (HTTP, CLI,
// batch worker) and maps engine failures onto the two boundary errors.
package phone

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/asyoutype"
	"github.com/rohnsht/PhoneNumber/internal/catalog"
	"github.com/rohnsht/PhoneNumber/internal/metrics"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
	"github.com/rohnsht/PhoneNumber/internal/util"
)

var (
	ErrInvalidParameters = errors.New("InvalidParameters")
	ErrInvalidNumber     = errors.New("InvalidNumber")

	errNotValid  = errors.New("number is not valid")
	errNoCarrier = errors.New("carrier lookup not configured")
)

// RegionLocator reports the network country of the host device.
type RegionLocator interface {
	RegionCode(ctx context.Context) (string, error)
}

type Service struct {
	engine  *phonenumber.Engine
	catalog *catalog.Catalog
	carrier RegionLocator
	log     *zap.Logger
}

func New(engine *phonenumber.Engine, cat *catalog.Catalog, carrier RegionLocator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{engine: engine, catalog: cat, carrier: carrier, log: log}
}

// Parse parses and validates text. Numbers that parse but are not valid
// are reported as ErrInvalidNumber.
func (s *Service) Parse(text, region string) (model.ParseResult, error) {
	if text == "" {
		return model.ParseResult{}, s.observe("parse", fmt.Errorf("%w: empty 'string'", ErrInvalidParameters))
	}
	res, err := s.parse(text, region)
	return res, s.observe("parse", err)
}

// ParseList parses every distinct string. Failing strings map to nil.
func (s *Service) ParseList(texts []string, region string) (map[string]*model.ParseResult, error) {
	if len(texts) == 0 {
		return nil, s.observe("parse_list", fmt.Errorf("%w: empty 'strings'", ErrInvalidParameters))
	}
	out := make(map[string]*model.ParseResult, len(texts))
	for _, text := range texts {
		if _, done := out[text]; done {
			continue
		}
		res, err := s.parse(text, region)
		if err != nil {
			out[text] = nil
			continue
		}
		out[text] = &res
	}
	return out, s.observe("parse_list", nil)
}

// Format replays text through a fresh as-you-type session.
func (s *Service) Format(text, region string) (string, error) {
	if text == "" {
		return "", s.observe("format", fmt.Errorf("%w: empty 'string'", ErrInvalidParameters))
	}
	if region != "" {
		if _, ok := s.engine.Registry().Region(region); !ok {
			if _, plus := util.NormalizePhone(text); !plus {
				return "", s.observe("format", fmt.Errorf("%w: %w", ErrInvalidNumber, phonenumber.ErrUnknownRegion))
			}
		}
	}
	f := asyoutype.New(s.engine.Registry(), region)
	return f.InputString(text), s.observe("format", nil)
}

// Validate parses text and checks it against region when one is given.
func (s *Service) Validate(text, region string) (bool, error) {
	if text == "" {
		return false, s.observe("validate", fmt.Errorf("%w: empty 'string'", ErrInvalidParameters))
	}
	n, err := s.engine.Parse(text, region)
	if err != nil {
		return false, s.observe("validate", fmt.Errorf("%w: %w", ErrInvalidNumber, err))
	}
	return s.engine.IsValid(n, region), s.observe("validate", nil)
}

func (s *Service) SupportedRegions(locale string) []catalog.Region {
	regions := s.catalog.List(locale)
	_ = s.observe("regions", nil)
	return regions
}

func (s *Service) CarrierRegionCode(ctx context.Context) (string, error) {
	if s.carrier == nil {
		return "", errNoCarrier
	}
	return s.carrier.RegionCode(ctx)
}

func (s *Service) parse(text, region string) (model.ParseResult, error) {
	n, err := s.engine.Parse(text, region)
	if err != nil {
		return model.ParseResult{}, fmt.Errorf("%w: %w", ErrInvalidNumber, err)
	}
	if !s.engine.IsValid(n, "") {
		return model.ParseResult{}, fmt.Errorf("%w: %w", ErrInvalidNumber, errNotValid)
	}
	return s.engine.Result(n), nil
}

func (s *Service) observe(op string, err error) error {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrInvalidParameters):
		outcome = "invalid_parameters"
	case errors.Is(err, ErrInvalidNumber):
		outcome = "invalid_number"
		s.log.Debug("invalid number", zap.String("op", op), zap.Error(err))
	case err != nil:
		outcome = "error"
	}
	metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()
	return err
}
