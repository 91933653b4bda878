package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

// cloudtrailSource parses a file as a single JSON object with a top-level
// "Records" array and yields each element as a record.
type cloudtrailSource struct {
	path    string
	records []Record
	idx     int
}

func newCloudTrailSource(path string) (Source, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an explicit, caller-supplied argument
	if err != nil {
		return nil, &sifterr.IOError{Path: path, Err: err}
	}

	var envelope struct {
		Records json.RawMessage `json:"Records"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return nil, &sifterr.FormatError{Path: path, Msg: "not a valid JSON object", Err: err}
	}
	if envelope.Records == nil {
		return nil, &sifterr.FormatError{Path: path, Msg: "missing top-level \"Records\" array"}
	}

	var rawRecords []json.RawMessage
	recDec := json.NewDecoder(bytes.NewReader(envelope.Records))
	recDec.UseNumber()
	if err := recDec.Decode(&rawRecords); err != nil {
		return nil, &sifterr.FormatError{Path: path, Msg: "\"Records\" is not an array", Err: err}
	}

	records := make([]Record, 0, len(rawRecords))
	for i, raw := range rawRecords {
		rec := make(Record)
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		if err := d.Decode(&rec); err != nil {
			return nil, &sifterr.FormatError{
				Path: path,
				Msg:  fmt.Sprintf("Records[%d] is not a JSON object", i),
				Err:  err,
			}
		}
		records = append(records, rec)
	}

	return &cloudtrailSource{path: path, records: records}, nil
}

func (s *cloudtrailSource) Next(ctx context.Context) (Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.idx >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.idx]
	s.idx++
	return rec, nil
}

func (s *cloudtrailSource) Close() error { return nil }
