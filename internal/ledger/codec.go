package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header is the column order every write uses.
var Header = []string{"id", "username", "password", "port", "interface"}

// Decode reads a ledger file. Columns are located by header name, so files
// written with the id-less projection (username,password,port,interface)
// still load; their records get positional ids 1..n.
func Decode(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	_, hasID := cols["id"]

	records := []Record{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec := Record{
			Username:  field(row, "username"),
			Password:  field(row, "password"),
			Port:      field(row, "port"),
			Interface: field(row, "interface"),
		}
		if hasID {
			id, err := strconv.Atoi(strings.TrimSpace(field(row, "id")))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid id %q", line, field(row, "id"))
			}
			rec.ID = id
		} else {
			rec.ID = len(records) + 1
		}
		records = append(records, rec)
	}
	return records, nil
}

// Encode renders records with the full header.
func Encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{strconv.Itoa(r.ID), r.Username, r.Password, r.Port, r.Interface}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
