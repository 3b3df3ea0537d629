package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/communet/internal/application"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r recorded)) (*ChannelIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path, body: string(b)}
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, rec)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewChannelIndex(es, "channels"), &calls
}

func TestIndexPutsDocument(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	desc := "talk"
	err := idx.Index(context.Background(), application.ChannelDocument{ID: "c1", Name: "general", Description: &desc})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/channels/_doc/c1", (*calls)[0].path)

	var doc application.ChannelDocument
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &doc))
	assert.Equal(t, "general", doc.Name)
}

func TestRemoveIgnoresMissing(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, idx.Remove(context.Background(), "c1"))
}

func TestSearchDecodesHits(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ recorded) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"c1","_source":{"id":"c1","name":"golang"}}]}}`))
	})

	docs, err := idx.Search(context.Background(), "go", 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "golang", docs[0].Name)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/_search"))
	assert.Contains(t, (*calls)[0].body, `"size":5`)
}

func TestSearchErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := idx.Search(context.Background(), "go", 5)
	assert.Error(t, err)
}

func TestEnsureIndexCreatesMissingIndex(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, r recorded) {
		if r.method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPut, (*calls)[1].method)
	assert.Equal(t, "/channels", (*calls)[1].path)
	assert.Contains(t, (*calls)[1].body, `"mappings"`)
}

func TestEnsureIndexKeepsExistingIndex(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Len(t, *calls, 1)
}

func TestEnsureIndexToleratesCreationRace(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r recorded) {
		if r.method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"},"status":400}`))
	})

	assert.NoError(t, idx.EnsureIndex(context.Background()))
}
