package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider is one host telephony endpoint able to report the network
// country of the device.
type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	RegionCode(ctx context.Context) (string, error)
}

type regionResponse struct {
	NetworkCountryISO string `json:"network_country_iso"`
}

type HTTPProvider struct {
	name    string
	url     string
	client  *http.Client
	breaker *Breaker
}

func NewHTTPProvider(name, baseURL, path string, timeout time.Duration, failThreshold int, openFor time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if openFor <= 0 {
		openFor = 15 * time.Second
	}
	return &HTTPProvider{
		name:    name,
		url:     strings.TrimRight(baseURL, "/") + path,
		client:  &http.Client{Timeout: timeout},
		breaker: NewBreaker(failThreshold, openFor),
	}
}

func (p *HTTPProvider) Name() string  { return p.name }
func (p *HTTPProvider) Ready() bool   { return p.breaker.Ready() }
func (p *HTTPProvider) Acquire() bool { return p.breaker.Acquire() }

// RegionCode fetches the network country. The value is returned as the host
// reports it.
func (p *HTTPProvider) RegionCode(ctx context.Context) (string, error) {
	code, err := p.get(ctx)
	if err != nil {
		p.breaker.Failure()
		return "", err
	}
	p.breaker.Success()
	return code, nil
}

func (p *HTTPProvider) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return "", fmt.Errorf("provider=%s status=%d", p.name, res.StatusCode)
	}

	var body regionResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body); err != nil {
		return "", fmt.Errorf("provider=%s decode: %w", p.name, err)
	}
	if strings.TrimSpace(body.NetworkCountryISO) == "" {
		return "", fmt.Errorf("provider=%s: %w", p.name, ErrEmptyCode)
	}
	return body.NetworkCountryISO, nil
}
