// Package fetcher queries the Holland2Stay GraphQL feed for currently
// available listings.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"h2s_bot/internal/model"
)

const apiURL = "https://api.holland2stay.com/graphql/"

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads the set of available listings per city.
type Fetcher struct {
	client  HTTPClient
	bearer  string
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client. bearer may be empty;
// when set it is attached to every feed request.
func New(client HTTPClient, bearer string) *Fetcher {
	return &Fetcher{
		client:  client,
		bearer:  bearer,
		timeout: 30 * time.Second,
	}
}

// Fetch returns the full current set of available listings across the
// given cities. Cities are queried concurrently; if any single city
// fails, the whole fetch fails so the caller never mixes listings from
// two different cycles.
func (f *Fetcher) Fetch(ctx context.Context, cities model.CitySet) (model.ListingSet, error) {
	listings := make(model.ListingSet)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for city := range cities {
		city := city
		g.Go(func() error {
			found, err := f.fetchCity(ctx, city)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", city, err)
			}
			mu.Lock()
			for _, l := range found {
				listings[l] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (f *Fetcher) fetchCity(ctx context.Context, city model.City) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body := buildQuery(city.FeedID())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Content-Type", "application/json")
	if f.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+f.bearer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return parseListings(raw, city)
}

type feedResponse struct {
	Data struct {
		Products *struct {
			Items []feedItem `json:"items"`
		} `json:"products"`
	} `json:"data"`
}

type feedItem struct {
	Name               string  `json:"name"`
	LivingArea         string  `json:"living_area"`
	Floor              string  `json:"floor"`
	MinimumStay        string  `json:"minimum_stay"`
	BasicRent          float64 `json:"basic_rent"`
	AvailableStartdate string  `json:"available_startdate"`
	TypeOfContract     string  `json:"type_of_contract"`
}

func parseListings(raw []byte, city model.City) ([]model.Listing, error) {
	var resp feedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parse feed response: %w", err)
	}
	if resp.Data.Products == nil {
		return nil, fmt.Errorf("feed response has no products for %s", city)
	}

	listings := make([]model.Listing, 0, len(resp.Data.Products.Items))
	for _, item := range resp.Data.Products.Items {
		if item.Name == "" {
			continue
		}
		listings = append(listings, model.Listing{
			Name:          item.Name,
			City:          city,
			LivingArea:    item.LivingArea,
			Floor:         item.Floor,
			MinimumStay:   item.MinimumStay,
			BasicRent:     item.BasicRent,
			AvailableFrom: item.AvailableStartdate,
			ContractType:  item.TypeOfContract,
		})
	}
	return listings, nil
}

// buildQuery renders the GetCategories operation for one city. The feed
// only returns bookable units (available_to_book 179) in the residential
// category, sorted by available start date.
func buildQuery(cityID string) string {
	return fmt.Sprintf(`{ "operationName": "GetCategories", "variables": { "currentPage": 1, "filters": { "available_to_book": { "eq": "179" }, "category_uid": { "eq": "Nw==" }, "city": { "eq": "%s" } }, "pageSize": 100, "sort": { "available_startdate": "ASC" } }, "query": "query GetCategories($pageSize: Int!, $currentPage: Int!, $filters: ProductAttributeFilterInput!, $sort: ProductAttributeSortInput) { products( pageSize: $pageSize, currentPage: $currentPage, filter: $filters, sort: $sort ) { ...ProductsFragment, __typename } } fragment ProductsFragment on Products { items { name, sku, city, url_key, available_to_book, available_startdate, next_contract_startdate, building_name, finishing, living_area, no_of_rooms, resident_type, maximum_number_of_persons, type_of_contract, floor, basic_rent, minimum_stay, energy_label, __typename }, total_count, __typename }" }`, cityID)
}
