package envmanager

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrymomot/envmanager/pkg/entry"
)

// Tabular header columns.
const (
	ColumnName        = "Name"
	ColumnEnvironment = "Environment"
	ColumnBaseURL     = "BaseURL"
)

type tabularRow struct {
	name        string
	environment string
	url         string
}

// AddTabularText ingests pipe-delimited rows under a Name|Environment|BaseURL
// header. See AddTabular.
func (b *Builder) AddTabularText(text string) (*Builder, error) {
	return b.AddTabular(strings.NewReader(text))
}

// AddTabular ingests pipe-delimited rows under a Name|Environment|BaseURL
// header. Rows missing a field are skipped. A structural failure records a
// CSVParsingError that is also returned by Build, and no row of r is added.
func (b *Builder) AddTabular(r io.Reader) (*Builder, error) {
	rows, err := parseTabular(r)
	if err != nil {
		berr := &BuildError{Kind: CSVParsingError, Err: err}
		b.fail(berr)
		return b, berr
	}

	for _, row := range rows {
		b.add(row.name, row.environment, row.url)
	}
	return b, nil
}

// utf8BOM prefixes spreadsheet exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseTabular(r io.Reader) ([]tabularRow, error) {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(len(utf8BOM)); bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = entry.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTabular
	}
	if err != nil {
		return nil, err
	}

	nameCol, envCol, urlCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case ColumnName:
			nameCol = i
		case ColumnEnvironment:
			envCol = i
		case ColumnBaseURL:
			urlCol = i
		}
	}
	for _, c := range []struct {
		name string
		idx  int
	}{{ColumnName, nameCol}, {ColumnEnvironment, envCol}, {ColumnBaseURL, urlCol}} {
		if c.idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.name)
		}
	}

	var rows []tabularRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		row := tabularRow{
			name:        field(record, nameCol),
			environment: field(record, envCol),
			url:         field(record, urlCol),
		}
		if row.name == "" || row.environment == "" || row.url == "" {
			continue
		}
		rows = append(rows, row)
	}
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
