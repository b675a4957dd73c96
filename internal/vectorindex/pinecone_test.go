package vectorindex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPineconeIndex_Upsert(t *testing.T) {
	var got upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"upsertedCount":2}`))
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{Host: srv.URL, APIKey: "secret", Namespace: "legal"})
	defer idx.Close()

	page := 2
	items := []Item{
		{ID: "ipc-0-0", Values: []float32{0.1, 0.2}, Metadata: Metadata{SourceFile: "ipc.pdf", Page: &page, Text: "theft"}},
		{ID: "ipc-0-1", Values: []float32{0.3, 0.4}, Metadata: Metadata{SourceFile: "ipc.pdf", Text: "punishment"}},
	}
	require.NoError(t, idx.Upsert(context.Background(), items))
	require.Len(t, got.Vectors, 2)
	assert.Equal(t, "ipc-0-0", got.Vectors[0].ID)
	assert.Equal(t, "legal", got.Namespace)
	assert.Equal(t, "ipc.pdf", got.Vectors[0].Metadata.SourceFile)
}

func TestPineconeIndex_Upsert_truncatesMetadataText(t *testing.T) {
	var got upsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{Host: srv.URL, TextLimit: 10})
	long := strings.Repeat("x", 50)
	require.NoError(t, idx.Upsert(context.Background(), []Item{
		{ID: "a", Values: []float32{1}, Metadata: Metadata{Text: long}},
	}))
	assert.Len(t, got.Vectors[0].Metadata.Text, 10)
}

func TestPineconeIndex_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 10, req.TopK)
		assert.True(t, req.IncludeMetadata)

		resp := `{"matches":[
			{"id":"ipc-0-0","score":0.91,"metadata":{"source_file":"ipc.pdf","page":1,"text":"Section 378 theft"}},
			{"id":"crpc-0-0","score":0.72,"metadata":{"source_file":"crpc.pdf","page":null,"text":"arrest procedure"}}
		]}`
		_, _ = w.Write([]byte(resp))
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{Host: srv.URL})
	matches, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "ipc-0-0", matches[0].ID)
	assert.Equal(t, 0.91, matches[0].Score)
	assert.Equal(t, "ipc.pdf", matches[0].SourceFile)
	require.NotNil(t, matches[0].Page)
	assert.Equal(t, 1, *matches[0].Page)
	assert.Nil(t, matches[1].Page)
}

func TestPineconeIndex_Query_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer srv.Close()

	idx := NewPineconeIndex(PineconeConfig{Host: srv.URL})
	_, err := idx.Query(context.Background(), []float32{0.1}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index not found")
}

func TestPineconeIndex_Upsert_empty(t *testing.T) {
	idx := NewPineconeIndex(PineconeConfig{Host: "http://unused"})
	require.NoError(t, idx.Upsert(context.Background(), nil))
}
