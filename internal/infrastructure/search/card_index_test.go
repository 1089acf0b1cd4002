package search

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *CardIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewCardIndex(es, "cards")
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery([]string{"char*", "base"})
	b, err := json.Marshal(q)
	require.NoError(t, err)
	s := string(b)

	assert.Contains(t, s, `"set_name":{"case_insensitive":true,"value":"*base*"}`)
	assert.Contains(t, s, `"value":"*char\\*`)
	assert.Equal(t, MaxHits, q["size"])
	assert.Equal(t, false, q["_source"])
	must := q["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	assert.Len(t, must, 2)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	var created bool
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
			assert.Equal(t, "/cards", r.URL.Path)
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"set_name"`)
			fmt.Fprint(w, `{"acknowledged":true}`)
		}
	})
	require.NoError(t, ix.EnsureIndex(context.Background()))
	assert.True(t, created)
}

func TestIndexCards_WritesNDJSON(t *testing.T) {
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		sc := bufio.NewScanner(r.Body)
		var lines []string
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"_id":"base1-4"`)
		assert.Contains(t, lines[1], `"set_name":"Base"`)
		fmt.Fprint(w, `{"errors":false,"items":[{"index":{"_id":"base1-4","status":201}}]}`)
	})
	err := ix.IndexCards(context.Background(), []entity.Card{{ID: "base1-4", Name: "Charizard", Set: &entity.Set{ID: "base1", Name: "Base"}}})
	require.NoError(t, err)
}

func TestIndexCards_ReportsItemFailures(t *testing.T) {
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":true,"items":[{"index":{"_id":"a","status":201}},{"index":{"_id":"b","status":400}}]}`)
	})
	err := ix.IndexCards(context.Background(), []entity.Card{{ID: "a"}, {ID: "b"}})
	assert.EqualError(t, err, "bulk index: 1 of 2 documents failed")
}

func TestSearch_ReturnsIDs(t *testing.T) {
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/cards/_search"))
		fmt.Fprint(w, `{"hits":{"total":{"value":2,"relation":"eq"},"hits":[{"_id":"base1-4"},{"_id":"base2-4"}]}}`)
	})
	ids, err := ix.Search(context.Background(), []string{"char"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base1-4", "base2-4"}, ids)
}

func TestSearch_TooManyHits(t *testing.T) {
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hits":{"total":{"value":10001,"relation":"eq"},"hits":[{"_id":"a"}]}}`)
	})
	_, err := ix.Search(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrTooManyHits)
}

func TestSearch_ErrorStatus(t *testing.T) {
	ix := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"unavailable"}`)
	})
	_, err := ix.Search(context.Background(), []string{"char"})
	assert.Error(t, err)
}
