package entry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Delimiter separates the fields of a delimited text line.
const Delimiter = '|'

// DelimitedText encodes the entry as newline-joined lines of
// `ServiceName|EnvironmentName|BaseURL`, one line per environment.
func (e Entry) DelimitedText() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter

	for _, d := range e.environments {
		// Writes into a bytes.Buffer cannot fail.
		_ = w.Write([]string{e.name, d.Environment, urlString(d.BaseURL)})
	}
	w.Flush()

	return strings.TrimSuffix(buf.String(), "\n")
}

// String implements fmt.Stringer using the delimited text form.
func (e Entry) String() string {
	return e.DelimitedText()
}

// MarshalText implements encoding.TextMarshaler.
func (e Entry) MarshalText() ([]byte, error) {
	if e.name == "" || len(e.environments) == 0 {
		return nil, ErrMalformedText
	}
	return []byte(e.DelimitedText()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Entry) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return ErrMalformedText
	}
	*e = parsed
	return nil
}

// Parse decodes delimited text produced by DelimitedText.
//
// Every line must carry the same service name, otherwise Parse reports false.
// Lines with a missing environment or an invalid URL are skipped; if no line
// is left the text is rejected as well.
func Parse(text string) (Entry, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1

	var (
		name  string
		seen  bool
		pairs []Pair
	)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Entry{}, false
		}

		if !seen {
			name, seen = record[0], true
		}
		if record[0] != name {
			return Entry{}, false
		}
		if len(record) < 3 || record[1] == "" {
			continue
		}

		p, err := NewPair(record[1], record[2])
		if err != nil {
			continue
		}
		pairs = append(pairs, p)
	}

	if name == "" || len(pairs) == 0 {
		return Entry{}, false
	}
	return New(name, pairs...), true
}
