package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/David-Botos/s3-ingress/pkg/model"
)

// Delimiter is the field separator of both the source and the staged files
const Delimiter = ','

// ErrEmptyFile is returned when a source file has no header row
var ErrEmptyFile = errors.New("empty csv file")

// DecodeRecordSet decodes data from enc and parses it as CSV with a header row
func DecodeRecordSet(data []byte, enc encoding.Encoding) (*model.RecordSet, error) {
	if enc == nil {
		return nil, errors.New("encoding cannot be nil")
	}
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	return ReadRecordSet(reader)
}

// ReadRecordSet parses CSV text whose first row names the columns.
// Every data row must have as many fields as the header.
func ReadRecordSet(r io.Reader) (*model.RecordSet, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	rs, err := model.NewRecordSet(header)
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if err := rs.AppendRow(record); err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
	}

	return rs, nil
}

// EncodeRecordSet serializes the rows of rs as CSV without a header row
func EncodeRecordSet(rs *model.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = Delimiter

	for i := 0; i < rs.Len(); i++ {
		if err := writer.Write(rs.Row(i)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
