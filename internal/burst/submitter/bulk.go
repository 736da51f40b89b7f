package submitter

import (
	"bytes"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/burst/generator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BulkRequest is one bulk call: an index action per record, keyed and routed by the record id.
type BulkRequest struct {
	Index     string
	Documents int
	body      []byte
}

// Body returns a fresh reader over the encoded NDJSON payload.
func (r *BulkRequest) Body() io.Reader {
	return bytes.NewReader(r.body)
}

type bulkAction struct {
	Index bulkActionMeta `json:"index"`
}

type bulkActionMeta struct {
	Id      string `json:"_id"`
	Routing string `json:"routing"`
}

// EncodeBulk writes the NDJSON bulk payload for records to buf. Every record produces an action line followed by a
// source line.
func EncodeBulk(buf *bytes.Buffer, records []generator.Record) error {
	encoder := json.NewEncoder(buf)
	for _, record := range records {
		action := bulkAction{Index: bulkActionMeta{Id: record.Id, Routing: record.Id}}
		if err := encoder.Encode(action); err != nil {
			return errors.Wrapf(err, "encoding action for record %s", record.Id)
		}
		if err := encoder.Encode(record); err != nil {
			return errors.Wrapf(err, "encoding source for record %s", record.Id)
		}
	}
	return nil
}

// NewBulkRequest builds the bulk request for batch against index.
func NewBulkRequest(index string, batch []generator.Record) (*BulkRequest, error) {
	// Roughly 100 lorem words plus two ids and the framing per record.
	buf := bytes.NewBuffer(make([]byte, 0, len(batch)*900))
	if err := EncodeBulk(buf, batch); err != nil {
		return nil, err
	}
	return &BulkRequest{
		Index:     index,
		Documents: len(batch),
		body:      buf.Bytes(),
	}, nil
}
