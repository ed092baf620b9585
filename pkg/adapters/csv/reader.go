// Package csv ingests transfer tables from CSV files.
//
// The layout is the one produced by the bench spreadsheets:
//
//	DEST-PLATE-01
//	PlateName,SourceWell,DestWell
//	P1,A1,A1
//	P1,A2,A1
//
// The first line names the destination plate (only its first cell is read),
// the second line is the header and every following non-blank line is a row.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// aliases maps normalized header names onto Row field names.
var aliases = map[string]string{
	"platename":       "PlateName",
	"plate":           "PlateName",
	"sourceplate":     "PlateName",
	"sourcewell":      "SourceWell",
	"destwell":        "DestWell",
	"targetwell":      "DestWell",
	"destinationwell": "DestWell",
}

// positional is the column order assumed when the header is not recognized.
var positional = []string{"PlateName", "SourceWell", "DestWell"}

// Reader implements ports.TableReader for a CSV file or stream.
type Reader struct {
	path   string
	open   func() (io.ReadCloser, error)
	source string
}

// NewReader reads the file at path on every ReadTable call.
func NewReader(path string) *Reader {
	return &Reader{
		path:   path,
		source: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FromReader reads a single stream. source names it in the Table (and thus the run ID).
func FromReader(r io.Reader, source string) *Reader {
	return &Reader{
		source: source,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

// ReadTable parses the destination plate line, the header and the data rows.
// It does not validate wells; the protocol builder does.
func (r *Reader) ReadTable(ctx context.Context) (domain.Table, error) {
	rc, err := r.open()
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open table: %w", err)
	}
	defer rc.Close()

	cr := stdcsv.NewReader(rc)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	table := domain.Table{Source: r.source}
	var fields []string
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, fmt.Errorf("failed to parse table: %w", err)
		}
		if blank(record) {
			continue
		}

		switch line {
		case 0:
			table.DestPlate = strings.TrimSpace(record[0])
		case 1:
			fields = headerFields(record)
		default:
			row, err := decodeRow(fields, record)
			if err != nil {
				return domain.Table{}, fmt.Errorf("line %d: %w", line+1, err)
			}
			table.Rows = append(table.Rows, row)
		}
		line++
	}

	if line == 0 {
		return domain.Table{}, fmt.Errorf("%s: %w", r.source, domain.ErrEmptyTable)
	}
	return table, nil
}

// headerFields maps each column to a Row field name, or to positional names
// when the header does not name all three fields.
func headerFields(header []string) []string {
	fields := make([]string, len(header))
	found := map[string]bool{}
	for i, h := range header {
		if f, ok := aliases[normalize(h)]; ok && !found[f] {
			fields[i] = f
			found[f] = true
		}
	}
	if len(found) == len(positional) {
		return fields
	}
	return positional
}

func decodeRow(fields, record []string) (domain.Row, error) {
	values := make(map[string]string, len(positional))
	for i, f := range fields {
		if f == "" {
			continue
		}
		if i < len(record) {
			values[f] = strings.TrimSpace(record[i])
		} else {
			values[f] = ""
		}
	}

	var row domain.Row
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &row,
		MatchName: func(mapKey, fieldName string) bool {
			return normalize(mapKey) == normalize(fieldName)
		},
	})
	if err != nil {
		return domain.Row{}, err
	}
	if err := dec.Decode(values); err != nil {
		return domain.Row{}, fmt.Errorf("failed to decode row: %w", err)
	}
	return row, nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
