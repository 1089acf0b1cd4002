package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

const cardsMapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "name":     {"type": "keyword"},
      "number":   {"type": "keyword"},
      "set_name": {"type": "keyword"},
      "set_id":   {"type": "keyword"},
      "rarity":   {"type": "keyword"},
      "types":    {"type": "keyword"},
      "set":      {"type": "object", "enabled": false},
      "prices":   {"type": "object", "enabled": false}
    }
  }
}`

// searchFields are matched case-insensitively as substrings, the same
// columns the Postgres search uses.
var searchFields = []string{"name", "number", "set_name"}

// CardIndex keeps a denormalized copy of the card catalog in Elasticsearch.
type CardIndex struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewCardIndex(es *elasticsearch.Client, index string) *CardIndex {
	return &CardIndex{ES: es, Index: index, Timeout: 10 * time.Second}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (ix *CardIndex) EnsureIndex(ctx context.Context) error {
	res, err := ix.ES.Indices.Exists([]string{ix.Index}, ix.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = ix.ES.Indices.Create(ix.Index,
		ix.ES.Indices.Create.WithContext(ctx),
		ix.ES.Indices.Create.WithBody(strings.NewReader(cardsMapping)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return responseErr("create index", res)
}

// IndexCards bulk-indexes cards keyed by card id.
func (ix *CardIndex) IndexCards(ctx context.Context, cards []entity.Card) error {
	if len(cards) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range cards {
		c := cards[i]
		if c.SetName == "" && c.Set != nil {
			c.SetName = c.Set.Name
		}
		if err := enc.Encode(map[string]any{"index": map[string]any{"_index": ix.Index, "_id": c.ID}}); err != nil {
			return err
		}
		if err := enc.Encode(c); err != nil {
			return err
		}
	}

	c, cancel := context.WithTimeout(ctx, ix.Timeout)
	defer cancel()
	res, err := ix.ES.Bulk(bytes.NewReader(buf.Bytes()), ix.ES.Bulk.WithContext(c))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if err := responseErr("bulk index", res); err != nil {
		return err
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Errors {
		failed := 0
		for _, it := range parsed.Items {
			for _, r := range it {
				if r.Status > 299 {
					failed++
				}
			}
		}
		return fmt.Errorf("bulk index: %d of %d documents failed", failed, len(cards))
	}
	return nil
}

// MaxHits is the Elasticsearch default result window. Searches matching more
// cards than this return ErrTooManyHits.
const MaxHits = 10000

var ErrTooManyHits = errors.New("search: matches exceed the result window")

// buildQuery ANDs one clause per term; a clause matches when any search
// field contains the term. Only ids are fetched.
func buildQuery(terms []string) map[string]any {
	must := make([]any, 0, len(terms))
	for _, t := range terms {
		should := make([]any, 0, len(searchFields))
		for _, f := range searchFields {
			should = append(should, map[string]any{
				"wildcard": map[string]any{
					f: map[string]any{"value": "*" + escapeWildcard(t) + "*", "case_insensitive": true},
				},
			})
		}
		must = append(must, map[string]any{"bool": map[string]any{"should": should, "minimum_should_match": 1}})
	}
	return map[string]any{
		"query":            map[string]any{"bool": map[string]any{"must": must}},
		"_source":          false,
		"size":             MaxHits,
		"track_total_hits": true,
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string { return wildcardEscaper.Replace(s) }

// Search returns the ids of the cards matching every term.
func (ix *CardIndex) Search(ctx context.Context, terms []string) ([]string, error) {
	if len(terms) == 0 {
		return []string{}, nil
	}
	b, err := json.Marshal(buildQuery(terms))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := ix.ES.Search(ix.ES.Search.WithContext(c), ix.ES.Search.WithIndex(ix.Index), ix.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if err := responseErr("search", res); err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Hits.Total.Value > len(parsed.Hits.Hits) {
		return nil, ErrTooManyHits
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func responseErr(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("%s: %s: %s", op, res.Status(), strings.TrimSpace(string(b)))
}
