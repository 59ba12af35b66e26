// Package immobiliare scrapes immobiliare.it through its mobile API: a free,
// documented-enough JSON endpoint paged by offset. A zone is targeted by its
// microzone id (z3) when known, its macrozone id (z2) otherwise, and as a
// last resort by resolving the public search URL into query params.
package immobiliare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ipg/prezzogiusto/internal/httpclient"
	"github.com/ipg/prezzogiusto/internal/zones"
)

const (
	resolverURL   = "https://ios-imm-v4.ws-app.com/b2c/v1/resolver/url"
	propertiesURL = "https://ios-imm-v4.ws-app.com/b2c/v1/properties"

	// pageSize is fixed by the API.
	pageSize = 20

	defaultTimeout = 30 * time.Second
)

type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httpclient.New(defaultTimeout)
	}
	return &Client{httpClient: httpClient}
}

func searchURL(zone *zones.Zone) string {
	return fmt.Sprintf("https://www.immobiliare.it/vendita-case/%s/%s/", zone.City, zone.Slug)
}

// resolveSearchParams builds the properties-endpoint query for a zone. Zones
// with external ids skip the resolver round-trip entirely.
func (c *Client) resolveSearchParams(ctx context.Context, zone *zones.Zone) (url.Values, error) {
	if zone.ImmobiliareZ3 != 0 {
		return url.Values{
			"cat": {"1"},
			"t":   {"v"},
			"z3":  {fmt.Sprint(zone.ImmobiliareZ3)},
		}, nil
	}

	if zone.ImmobiliareZ2 != 0 {
		return url.Values{
			"cat": {"1"},
			"t":   {"v"},
			"z2":  {fmt.Sprint(zone.ImmobiliareZ2)},
		}, nil
	}

	reqURL := fmt.Sprintf("%s?url=%s", resolverURL, url.QueryEscape(searchURL(zone)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("can't create resolver request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't do resolver request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read resolver response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolver sent http error: %d", resp.StatusCode)
	}

	var resolved resolverResponse
	if err := json.Unmarshal(body, &resolved); err != nil {
		return nil, fmt.Errorf("can't parse resolver response: %w", err)
	}
	if resolved.Type != "search" || len(resolved.Params) == 0 {
		return nil, fmt.Errorf("invalid resolver response: type=%s", resolved.Type)
	}

	params := url.Values{}
	for key, value := range resolved.Params {
		params.Set(key, fmt.Sprint(value))
	}
	return params, nil
}

func (c *Client) fetchPage(ctx context.Context, params url.Values, offset int) (*propertiesResponse, error) {
	pageParams := url.Values{}
	for k, vs := range params {
		pageParams[k] = vs
	}
	pageParams.Set("start", fmt.Sprint(offset))

	reqURL := fmt.Sprintf("%s?%s", propertiesURL, pageParams.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("can't create properties request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't do properties request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("can't read properties response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("properties endpoint sent http error: %d", resp.StatusCode)
	}

	var page propertiesResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("can't parse properties response: %w", err)
	}
	return &page, nil
}

// TotalActive returns how many listings the site currently advertises for a
// zone, without fetching them. Used for pre-run estimates and drift reports.
func (c *Client) TotalActive(ctx context.Context, zone *zones.Zone) (int, error) {
	params, err := c.resolveSearchParams(ctx, zone)
	if err != nil {
		return 0, err
	}

	page, err := c.fetchPage(ctx, params, 0)
	if err != nil {
		return 0, err
	}
	return page.TotalActive, nil
}
