// Package tcgapi is a small client for the Pokémon TCG API (api.pokemontcg.io).
package tcgapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ReleaseDateLayout is the format the API uses for set release dates.
const ReleaseDateLayout = "2006/01/02"

type Price struct {
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
	Market *float64 `json:"market"`
}

type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Supertype   string   `json:"supertype"`
	Subtypes    []string `json:"subtypes"`
	HP          string   `json:"hp"`
	Types       []string `json:"types"`
	EvolvesFrom string   `json:"evolvesFrom"`
	EvolvesTo   []string `json:"evolvesTo"`
	Number      string   `json:"number"`
	Artist      string   `json:"artist"`
	Rarity      string   `json:"rarity"`
	Set         struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"set"`
	Images struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
	TCGPlayer *struct {
		Prices map[string]Price `json:"prices"`
	} `json:"tcgplayer,omitempty"`
}

// Prices returns the tcgplayer price entry for variant, or nil.
func (c Card) Prices(variant string) *Price {
	if c.TCGPlayer == nil {
		return nil
	}
	p, ok := c.TCGPlayer.Prices[variant]
	if !ok {
		return nil
	}
	return &p
}

type Set struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series"`
	Total       int    `json:"total"`
	ReleaseDate string `json:"releaseDate"`
	Images      struct {
		Symbol string `json:"symbol"`
		Logo   string `json:"logo"`
	} `json:"images"`
}

type page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
}

// Client talks to the card-data API. It never retries.
type Client struct {
	BaseURL  string
	APIKey   string
	PageSize int
	HTTP     *http.Client
}

func NewClient(baseURL, apiKey string, pageSize int, timeout time.Duration) *Client {
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 250
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		PageSize: pageSize,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tcg api: status %d: %s", e.Status, e.Body)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// fetchAll walks pages until the reported total is reached or a page comes back short.
func fetchAll[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	var out []T
	for n := 1; ; n++ {
		params := url.Values{}
		for k, v := range q {
			params[k] = v
		}
		params.Set("page", strconv.Itoa(n))
		params.Set("pageSize", strconv.Itoa(c.PageSize))

		var p page[T]
		if err := c.get(ctx, path, params, &p); err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", path, n, err)
		}
		out = append(out, p.Data...)
		if len(p.Data) < c.PageSize || (p.TotalCount > 0 && len(out) >= p.TotalCount) {
			break
		}
	}
	return out, nil
}

func (c *Client) AllSets(ctx context.Context) ([]Set, error) {
	return fetchAll[Set](ctx, c, "/sets", nil)
}

func (c *Client) AllCards(ctx context.Context) ([]Card, error) {
	return fetchAll[Card](ctx, c, "/cards", nil)
}

// SearchCards runs a raw Lucene-style query such as "name:Alakazam" and
// returns the first page only.
func (c *Client) SearchCards(ctx context.Context, query string) ([]Card, error) {
	params := url.Values{"q": {query}, "page": {"1"}, "pageSize": {strconv.Itoa(c.PageSize)}}
	var p page[Card]
	if err := c.get(ctx, "/cards", params, &p); err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	return p.Data, nil
}

// ParseReleaseDate parses the API's release date; ok is false when empty or malformed.
func ParseReleaseDate(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(ReleaseDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
