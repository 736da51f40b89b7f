package submitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/burst/generator"
)

func TestNormalizeURL(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"bare host and port": {input: "localhost:9200", expected: "http://localhost:9200"},
		"bare host":          {input: "es", expected: "http://es"},
		"http scheme":        {input: "http://es:9200", expected: "http://es:9200"},
		"https scheme":       {input: "https://x:9200", expected: "https://x:9200"},
		"surrounding spaces": {input: " localhost:9200 ", expected: "http://localhost:9200"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeURL(tc.input))
		})
	}
}

func TestNewClient_InvalidUrl(t *testing.T) {
	config := configuration.Default()
	config.Url = "http://es:notaport"

	_, err := NewClient(config)
	assert.Error(t, err)
}

func TestNewClient_SchemelessTargetIsAddressedOverHttp(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := configuration.Default()
	config.Url = strings.TrimPrefix(server.URL, "http://")

	client, err := NewClient(config)
	require.NoError(t, err)

	created, err := EnsureIndex(context.Background(), client, config.Index)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, hits)
}

// Servers older than Elasticsearch 7.14, and OpenSearch, never send X-Elastic-Product.
func TestNewClient_AcceptsServerWithoutProductHeader(t *testing.T) {
	var created, bulk int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/test":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/test":
			created++
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		case r.Method == http.MethodPost && r.URL.Path == "/test/_bulk":
			bulk++
			_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	config := configuration.Default()
	config.Url = server.URL

	client, err := NewClient(config)
	require.NoError(t, err)

	ok, err := EnsureIndex(context.Background(), client, config.Index)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, created)

	sub := NewSubmitter(client, config.Index.Name, 0)
	req, err := sub.Build(generator.NewFakeProducer(1).Batch(2))
	require.NoError(t, err)
	result := sub.Finish(sub.Send(context.Background(), req))

	assert.NoError(t, result.Err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.False(t, result.Failed())
	assert.Equal(t, 1, bulk)
}
