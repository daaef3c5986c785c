package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	"bizdir/internal/platform/metrics"
)

// CompanyStatusActive is the registry status required for enrolment.
const CompanyStatusActive = "active"

// insufficientAddressPrefixes are the company-number prefixes whose registry
// records omit address data; companies matching them need the manual
// address-lookup step.
var insufficientAddressPrefixes = []string{"IP", "LP", "NP", "RS", "SL"}

// Company is a registry record for one registered company.
type Company struct {
	Number       string `json:"company_number"`
	Name         string `json:"company_name"`
	Status       string `json:"company_status"`
	CompanyType  string `json:"company_type"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	PostalCode   string `json:"postal_code"`
}

// IsActive reports whether the company may enrol.
func (c Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

// HasInsufficientAddress reports whether the registry record lacks usable
// address data for this company number.
func (c Company) HasInsufficientAddress() bool {
	return HasInsufficientAddress(c.Number)
}

// HasInsufficientAddress checks a company number against the fixed prefix set.
func HasInsufficientAddress(number string) bool {
	for _, prefix := range insufficientAddressPrefixes {
		if strings.HasPrefix(number, prefix) {
			return true
		}
	}
	return false
}

// Address is one candidate from a postcode lookup.
type Address struct {
	Line1      string `json:"line_1"`
	Line2      string `json:"line_2"`
	PostalCode string `json:"postal_code"`
}

// RegistryClient calls the company registry search service and the address
// lookup service. Concurrent lookups of the same company number collapse into
// a single upstream call.
type RegistryClient struct {
	client
	group singleflight.Group
}

func NewRegistryClient(baseURL string, logger *slog.Logger, m *metrics.Metrics) *RegistryClient {
	return &RegistryClient{client: newClient("registry", baseURL, logger, m)}
}

// SearchCompanies returns candidate companies matching a free-text term.
func (c *RegistryClient) SearchCompanies(ctx context.Context, term string) ([]Company, error) {
	var companies []Company
	result, err := c.do(ctx, http.MethodGet, "/companies/search/",
		url.Values{"term": {term}}, nil, &companies)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeNotFound {
		return []Company{}, nil
	}
	return companies, nil
}

// GetCompany fetches one company by number. Not-found is a valid absence, not
// an error; callers branch on the result.
func (c *RegistryClient) GetCompany(ctx context.Context, number string) (*Company, Result, error) {
	type lookup struct {
		company *Company
		result  Result
	}
	v, err, _ := c.group.Do(number, func() (any, error) {
		var company Company
		result, err := c.do(ctx, http.MethodGet, "/companies/"+url.PathEscape(number)+"/", nil, nil, &company)
		if err != nil {
			return lookup{result: result}, err
		}
		if !result.OK() {
			return lookup{result: result}, nil
		}
		return lookup{company: &company, result: result}, nil
	})
	l := v.(lookup)
	return l.company, l.result, err
}

// SearchAddresses returns candidate addresses for a postcode.
func (c *RegistryClient) SearchAddresses(ctx context.Context, postcode string) ([]Address, error) {
	var addresses []Address
	result, err := c.do(ctx, http.MethodGet, "/addresses/search/",
		url.Values{"postcode": {postcode}}, nil, &addresses)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeNotFound {
		return []Address{}, nil
	}
	return addresses, nil
}
