package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
)

const bom = "\uFEFF"

// ReadCSV parses a comma separated stream with a header row into a table.
// Duplicate header names get .1, .2 suffixes, blank names become "Unnamed: i",
// short rows are padded with missing cells and rows wider than the header are rejected
func ReadCSV(r io.Reader) (*table.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, perr.SourceUnavailablef(nil, "csv: no header row")
	}
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "csv: read header")
	}

	t, err := table.New(mangleHeader(header))
	if err != nil {
		return nil, perr.SourceUnavailablef(err, "csv: header")
	}
	width := t.Width()

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perr.SourceUnavailablef(err, "csv: read")
		}
		if len(rec) > width {
			line, _ := cr.FieldPos(0)
			return nil, perr.SourceUnavailablef(nil, "csv: line %d has %d fields, header has %d", line, len(rec), width)
		}
		row := make([]table.Value, width)
		for i, cell := range rec {
			row[i] = table.ParseCell(cell)
		}
		if err := t.Append(row); err != nil {
			return nil, perr.SourceUnavailablef(err, "csv: append")
		}
	}
	return t, nil
}

// mangleHeader makes column names unique the way pandas does
func mangleHeader(in []string) []string {
	out := make([]string, len(in))
	taken := make(map[string]bool, len(in))
	for i, name := range in {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = name
	}
	for _, name := range out {
		taken[name] = true
	}
	seen := make(map[string]int, len(in))
	for i, name := range out {
		n, dup := seen[name]
		if !dup {
			seen[name] = 0
			continue
		}
		for {
			n++
			cand := name + "." + strconv.Itoa(n)
			if !taken[cand] {
				out[i] = cand
				taken[cand] = true
				break
			}
		}
		seen[name] = n
	}
	return out
}
