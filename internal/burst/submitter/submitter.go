package submitter

import (
	"context"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/burst/generator"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
)

// Result is the outcome of one bulk round trip. Every Result counts as a completed call, whether or not it Failed.
type Result struct {
	Documents       int
	FailedDocuments int
	StatusCode      int
	Latency         time.Duration
	Err             error
}

// Failed reports whether the round trip errored, was rejected, or had any document rejected.
func (r Result) Failed() bool {
	return r.Err != nil || r.StatusCode > 299 || r.FailedDocuments > 0
}

// Reply is an in-flight bulk response that has not yet been read. It must be passed to Finish exactly once.
type Reply struct {
	documents int
	res       *esapi.Response
	err       error
	latency   time.Duration
	cancel    context.CancelFunc
}

// Submitter turns record batches into bulk requests against a single index.
// It holds no mutable state and may be shared by every core.
type Submitter struct {
	transport esapi.Transport
	index     string
	timeout   time.Duration
}

// NewSubmitter returns a Submitter that writes to index through transport, typically the shared client from NewClient.
// A positive timeout bounds each round trip.
func NewSubmitter(transport esapi.Transport, index string, timeout time.Duration) *Submitter {
	return &Submitter{
		transport: transport,
		index:     index,
		timeout:   timeout,
	}
}

// Build encodes batch into a bulk request. Pure CPU work; it never blocks on the network.
func (s *Submitter) Build(batch []generator.Record) (*BulkRequest, error) {
	return NewBulkRequest(s.index, batch)
}

// Send performs the network round trip for req and returns once response headers arrive or the request fails.
func (s *Submitter) Send(ctx context.Context, req *BulkRequest) *Reply {
	cancel := func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	start := time.Now()
	res, err := esapi.BulkRequest{
		Index: req.Index,
		Body:  req.Body(),
	}.Do(ctx, s.transport)

	return &Reply{
		documents: req.Documents,
		res:       res,
		err:       err,
		latency:   time.Since(start),
		cancel:    cancel,
	}
}

// Finish reads and decodes the reply body, releasing the connection and any timeout attached to the request.
func (s *Submitter) Finish(reply *Reply) Result {
	defer reply.cancel()

	result := Result{
		Documents: reply.documents,
		Latency:   reply.latency,
	}
	if reply.err != nil {
		result.Err = errors.Wrap(reply.err, "sending bulk request")
		return result
	}
	defer reply.res.Body.Close()

	result.StatusCode = reply.res.StatusCode
	body, err := io.ReadAll(reply.res.Body)
	if err != nil {
		result.Err = errors.Wrap(err, "reading bulk response")
		return result
	}
	if reply.res.IsError() {
		result.Err = &bursterrors.ErrUnexpectedResponse{
			Operation:  "bulk",
			StatusCode: reply.res.StatusCode,
			Body:       truncate(string(body), 512),
		}
		return result
	}
	result.FailedDocuments = countFailedItems(body)
	return result
}

// countFailedItems inspects the items of a bulk response only when the top-level errors flag is set.
func countFailedItems(body []byte) int {
	if !jsoniter.Get(body, "errors").ToBool() {
		return 0
	}
	items := jsoniter.Get(body, "items")
	failed := 0
	for i := 0; i < items.Size(); i++ {
		item := items.Get(i)
		for _, action := range item.Keys() {
			if item.Get(action, "status").ToInt() > 299 {
				failed++
			}
		}
	}
	return failed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
