// Package fileio reads supplier lists exported as spreadsheets
// (.xlsx, .xls, .csv) into header → cell maps.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file extensions we have no reader for.
var ErrUnsupported = errors.New("unsupported file type")

// Record is one data row keyed by header text.
type Record = map[string]string

// ReadAnyMaps picks a reader by extension. headerRow is 1-based; values
// below 1 mean the first row.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]Record, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv", ".txt":
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filename)
	}
}

// Supported reports whether ReadAnyMaps can handle the file name.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls", ".csv", ".txt":
		return true
	}
	return false
}

// pickHeader takes the header row and names empty cells "Column N".
// Duplicate names get a " (2)", " (3)" suffix so no column is lost.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	used := make(map[string]bool, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		// суффикс может совпасть с настоящим заголовком: ищем свободный
		name := v
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", v, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// rowsToMaps turns rows below the header into records, skipping blank rows.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []Record {
	var out []Record
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(Record, len(headers))
		blank := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				blank = false
			}
			m[h] = v
		}
		if !blank {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell trims the value, turns NBSP-like spaces into plain ones
// and collapses runs of whitespace.
func normalizeCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\u2009", " ", "\uFEFF", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
