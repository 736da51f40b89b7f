package submitter

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
)

type recordedCall struct {
	method string
	path   string
	body   []byte
}

// fakeIndexService answers exists checks with existsStatus and create calls with createStatus, recording every call.
type fakeIndexService struct {
	mu           sync.Mutex
	existsStatus int
	createStatus int
	calls        []recordedCall
}

func (f *fakeIndexService) Perform(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := recordedCall{method: req.Method, path: req.URL.Path}
	if req.Body != nil {
		call.body, _ = io.ReadAll(req.Body)
	}
	f.calls = append(f.calls, call)

	switch req.Method {
	case http.MethodHead:
		return jsonResponse(f.existsStatus, ""), nil
	case http.MethodPut:
		return jsonResponse(f.createStatus, `{"acknowledged":true}`), nil
	}
	return jsonResponse(http.StatusMethodNotAllowed, ""), nil
}

func (f *fakeIndexService) createCalls() []recordedCall {
	var creates []recordedCall
	for _, call := range f.calls {
		if call.method == http.MethodPut {
			creates = append(creates, call)
		}
	}
	return creates
}

func testIndexConfig() configuration.IndexConfig {
	return configuration.Default().Index
}

func TestEnsureIndex_CreatesMissingIndexOnce(t *testing.T) {
	service := &fakeIndexService{existsStatus: 404, createStatus: 200}

	created, err := EnsureIndex(context.Background(), service, testIndexConfig())
	require.NoError(t, err)
	assert.True(t, created)

	require.Len(t, service.calls, 2)
	assert.Equal(t, http.MethodHead, service.calls[0].method)
	assert.Equal(t, "/test", service.calls[0].path)

	creates := service.createCalls()
	require.Len(t, creates, 1)
	assert.Equal(t, "/test", creates[0].path)
	assert.JSONEq(t, `{
		"mappings": {"properties": {"body": {"type": "text"}}},
		"settings": {"index.number_of_shards": 3, "index.number_of_replicas": 0}
	}`, string(creates[0].body))
}

func TestEnsureIndex_ExistingIndexIsLeftAlone(t *testing.T) {
	service := &fakeIndexService{existsStatus: 200, createStatus: 200}

	created, err := EnsureIndex(context.Background(), service, testIndexConfig())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, service.calls, 1)
	assert.Empty(t, service.createCalls())
}

func TestEnsureIndex_CreateRejected(t *testing.T) {
	service := &fakeIndexService{existsStatus: 404, createStatus: 400}

	created, err := EnsureIndex(context.Background(), service, testIndexConfig())
	assert.False(t, created)
	var unexpected *bursterrors.ErrUnexpectedResponse
	require.True(t, errors.As(err, &unexpected))
	assert.Equal(t, "indices.create", unexpected.Operation)
	assert.Equal(t, 400, unexpected.StatusCode)
	assert.Len(t, service.createCalls(), 1)
}

func TestEnsureIndex_UnexpectedExistsStatus(t *testing.T) {
	service := &fakeIndexService{existsStatus: 500, createStatus: 200}

	_, err := EnsureIndex(context.Background(), service, testIndexConfig())
	var unexpected *bursterrors.ErrUnexpectedResponse
	require.True(t, errors.As(err, &unexpected))
	assert.Equal(t, "indices.exists", unexpected.Operation)
	assert.Empty(t, service.createCalls())
}

func TestEnsureIndex_TransportError(t *testing.T) {
	transport := transportFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host")
	})

	_, err := EnsureIndex(context.Background(), transport, testIndexConfig())
	assert.ErrorContains(t, err, "no route to host")
}

func TestIndexDefinition_UsesConfiguredCounts(t *testing.T) {
	config := testIndexConfig()
	config.Shards = 6
	config.Replicas = 1

	body, err := IndexDefinition(config)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"mappings": {"properties": {"body": {"type": "text"}}},
		"settings": {"index.number_of_shards": 6, "index.number_of_replicas": 1}
	}`, string(body))
}
