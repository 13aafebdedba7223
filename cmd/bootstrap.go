package cmd

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/carrier"
	"github.com/rohnsht/PhoneNumber/internal/catalog"
	"github.com/rohnsht/PhoneNumber/internal/config"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
)

// newEngine loads the configured dataset. A dataset that fails to load
// aborts the command.
func newEngine(cfg config.Config) (*phonenumber.Engine, error) {
	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	return phonenumber.New(reg), nil
}

func newPhoneService(cfg config.Config, log *zap.Logger, withCarrier bool) (*phone.Service, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(engine.Registry(), catalog.CLDRNamer{}, cfg.Locale.Default, log)

	var loc phone.RegionLocator
	if withCarrier {
		loc = newLocator(cfg.Carrier, log)
	}
	return phone.New(engine, cat, loc, log), nil
}

func newLocator(cc config.CarrierConfig, log *zap.Logger) *carrier.Locator {
	var provs []carrier.Provider
	for _, pc := range cc.Providers {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		provs = append(provs, carrier.NewHTTPProvider(
			pc.Name,
			strings.TrimRight(pc.BaseURL, "/"),
			pc.Path,
			time.Duration(pc.TimeoutMs)*time.Millisecond,
			pc.Breaker.FailThreshold,
			time.Duration(pc.Breaker.OpenForMs)*time.Millisecond,
		))
	}
	return carrier.NewLocator(provs, cc.Attempts, cc.Fallback, log)
}
