// Package countries loads the country reference dataset from the
// RestCountries API and serves it through read-through caches.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// DefaultURL asks RestCountries for exactly the fields the dataset needs.
const DefaultURL = "https://restcountries.com/v3.1/all?fields=name,cca3,capital,population,area,flags,latlng,region"

// Source yields the full country dataset. Implementations are expected to
// cache; the upstream is slow and rate-limited.
type Source interface {
	Countries(ctx context.Context) ([]worldquiz.CountryRecord, error)
}

// Client fetches the dataset from the RestCountries API. Records are
// optionally enriched with harvested travel facts keyed by common name.
type Client struct {
	url    string
	client *http.Client
	facts  map[string]TravelFacts
}

// NewClient builds an upstream client. facts may be nil.
func NewClient(url string, facts map[string]TravelFacts) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		facts:  facts,
	}
}

// restCountry mirrors the slice of the RestCountries v3.1 payload we request.
type restCountry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Cca3       string    `json:"cca3"`
	Capital    []string  `json:"capital"`
	Population int64     `json:"population"`
	Area       float64   `json:"area"`
	LatLng     []float64 `json:"latlng"`
	Region     string    `json:"region"`
	Flags      struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

// Fetch retrieves and normalizes the dataset. It satisfies cache.Loader.
func (c *Client) Fetch(ctx context.Context) ([]worldquiz.CountryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building countries request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching countries: unexpected status %d", resp.StatusCode)
	}

	var raw []restCountry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding countries payload: %w", err)
	}

	records := make([]worldquiz.CountryRecord, 0, len(raw))
	for _, rc := range raw {
		rec := worldquiz.CountryRecord{
			CommonName:         rc.Name.Common,
			OfficialName:       rc.Name.Official,
			Region:             rc.Region,
			Population:         rc.Population,
			Area:               rc.Area,
			LatLng:             rc.LatLng,
			FlagURL:            rc.Flags.PNG,
			IsoCode:            rc.Cca3,
			Souvenirs:          "N/A",
			TraditionalCuisine: "N/A",
		}
		if len(rc.Capital) > 0 {
			rec.Capital = rc.Capital[0]
		}
		if f, ok := c.facts[rc.Name.Common]; ok {
			if f.Souvenirs != "" {
				rec.Souvenirs = f.Souvenirs
			}
			if f.TraditionalCuisine != "" {
				rec.TraditionalCuisine = f.TraditionalCuisine
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
