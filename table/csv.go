package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoder is one step of the ordered encoding fallback chain. The chain
// is tried front to back and the first success wins; the order is part
// of the loader's contract and must stay stable.
type decoder struct {
	name   string
	decode func([]byte) (string, error)
}

var fallbackChain = []decoder{
	{"utf-8-sig", decodeUTF8Strict},
	{"latin-1", decodeCharmap(charmap.ISO8859_1)},
	{"cp1252", decodeCharmap(charmap.Windows1252)},
}

func decodeUTF8Strict(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("invalid UTF-8")
	}
	return string(raw), nil
}

func decodeCharmap(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(raw []byte) (string, error) {
		return cm.NewDecoder().String(string(raw))
	}
}

// decodeText runs the fallback chain and, when every decoder fails,
// falls back to a lossy UTF-8 decode replacing undecodable bytes.
// It never fails: a garbled cell beats an aborted run.
func decodeText(raw []byte) string {
	for _, d := range fallbackChain {
		if s, err := d.decode(raw); err == nil {
			return s
		}
	}
	return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "�")
}

// ReadCSV parses delimited bytes into a Table. The first record is the
// header row. All cells stay strings, malformed records are skipped, and
// undecodable input degrades through the encoding fallback chain.
func ReadCSV(raw []byte, delimiter rune) (*Table, error) {
	text := decodeText(raw)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := readRecord(r)
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := New(header...)
	for {
		rec, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip and keep going.
			continue
		}
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		t.AppendRow(rec...)
	}
	return t, nil
}

// readRecord reads one record, translating recoverable parse errors into
// a skippable error and io.EOF into io.EOF.
func readRecord(r *csv.Reader) ([]string, error) {
	rec, err := r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		if _, ok := err.(*csv.ParseError); ok {
			return nil, err
		}
		return nil, io.EOF
	}
	return rec, nil
}

// WriteCSV renders the table with the given delimiter, prefixed with a
// UTF-8 byte-order mark so spreadsheet tools pick the right encoding.
func WriteCSV(w io.Writer, t *Table, delimiter rune) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		copy(rec, row)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into a fresh byte slice.
func EncodeCSV(t *Table, delimiter rune) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, delimiter); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
