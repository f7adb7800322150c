package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"market-board/internal/model"
)

var ErrNoHeader = errors.New("csv has no header row")

// ParseCSV reads a header-keyed table. Short rows leave their trailing
// columns absent, surplus cells are dropped, and rows whose cells are all
// blank are skipped.
func ParseCSV(body []byte) (model.Table, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, ErrNoHeader
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("read header: %w", err)
	}
	columns := uniqueColumns(header)

	table := model.Table{Columns: columns, Rows: []model.Record{}}
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("read row: %w", err)
		}
		rec := make(model.Record, len(columns))
		for i, v := range cells {
			if i >= len(columns) {
				break
			}
			rec[columns[i]] = v
		}
		if IsBlank(rec) {
			continue
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

// uniqueColumns suffixes repeated header names (Name, Name_1, Name_2) so no
// column shadows another in a Record.
func uniqueColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if seen[name] {
			base := name
			for n := 1; seen[name]; n++ {
				name = base + "_" + strconv.Itoa(n)
			}
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

func IsBlank(rec model.Record) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
