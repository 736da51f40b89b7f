package submitter

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
)

const defaultScheme = "http://"

// NormalizeURL prefixes targets given as a bare host[:port] with http://. Targets that carry a scheme are returned
// unchanged.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return defaultScheme + raw
}

// NewClient builds the single transport shared by every core worker. The connection pool is sized for the maximum
// number of bulk requests that can be in flight across all cores so that waves do not churn connections.
// Retries are disabled: a failed request counts as a completed round trip and is never resent.
// The transport does not check the X-Elastic-Product header, so Elasticsearch before 7.14 and OpenSearch are
// accepted as targets.
func NewClient(config configuration.Config) (*elastictransport.Client, error) {
	target, err := url.Parse(NormalizeURL(config.Url))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing url %s", config.Url)
	}

	inFlight := config.CoresNum * config.ChunkSize
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = inFlight
	transport.MaxIdleConnsPerHost = inFlight

	client, err := elastictransport.New(elastictransport.Config{
		URLs:         []*url.URL{target},
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating client for %s", config.Url)
	}
	return client, nil
}
