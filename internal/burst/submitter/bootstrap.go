package submitter

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

type indexDefinition struct {
	Mappings indexMappings `json:"mappings"`
	Settings indexSettings `json:"settings"`
}

type indexMappings struct {
	Properties map[string]fieldMapping `json:"properties"`
}

type fieldMapping struct {
	Type string `json:"type"`
}

type indexSettings struct {
	NumberOfShards   int `json:"index.number_of_shards"`
	NumberOfReplicas int `json:"index.number_of_replicas"`
}

// IndexDefinition returns the create-index body: a single text field named body plus shard and replica counts.
func IndexDefinition(config configuration.IndexConfig) ([]byte, error) {
	definition := indexDefinition{
		Mappings: indexMappings{
			Properties: map[string]fieldMapping{
				"body": {Type: "text"},
			},
		},
		Settings: indexSettings{
			NumberOfShards:   config.Shards,
			NumberOfReplicas: config.Replicas,
		},
	}
	body, err := json.Marshal(definition)
	return body, errors.WithStack(err)
}

// EnsureIndex issues one exists check for the configured index and, only when the index is missing, one create call.
// It reports whether the index was created.
func EnsureIndex(ctx context.Context, transport esapi.Transport, config configuration.IndexConfig) (bool, error) {
	res, err := esapi.IndicesExistsRequest{
		Index: []string{config.Name},
	}.Do(ctx, transport)
	if err != nil {
		return false, errors.Wrapf(err, "checking whether index %s exists", config.Name)
	}
	closeBody(res)

	switch res.StatusCode {
	case http.StatusOK:
		logging.Infof("Index %s already exists", config.Name)
		return false, nil
	case http.StatusNotFound:
	default:
		return false, errors.WithStack(&bursterrors.ErrUnexpectedResponse{
			Operation:  "indices.exists",
			StatusCode: res.StatusCode,
		})
	}

	definition, err := IndexDefinition(config)
	if err != nil {
		return false, err
	}
	res, err = esapi.IndicesCreateRequest{
		Index: config.Name,
		Body:  bytes.NewReader(definition),
	}.Do(ctx, transport)
	if err != nil {
		return false, errors.Wrapf(err, "creating index %s", config.Name)
	}
	defer closeBody(res)

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return false, errors.WithStack(&bursterrors.ErrUnexpectedResponse{
			Operation:  "indices.create",
			StatusCode: res.StatusCode,
			Body:       truncate(string(body), 512),
		})
	}
	logging.WithFields(map[string]any{
		"index":    config.Name,
		"shards":   config.Shards,
		"replicas": config.Replicas,
	}).Info("Created index")
	return true, nil
}

func closeBody(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
