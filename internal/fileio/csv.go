package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffBytes = 4096

// readCSV detects the charset and the delimiter (',' ';' or tab) from the
// first few KB and converts the stream to UTF-8.
func readCSV(r io.Reader, headerRow int) ([]Record, error) {
	br := bufio.NewReaderSize(r, sniffBytes)
	peek, _ := br.Peek(sniffBytes)
	peek = bytes.TrimPrefix(peek, []byte("\uFEFF"))

	var src io.Reader = br
	if dec := detectDecoder(peek); dec != nil {
		src = transform.NewReader(br, dec.NewDecoder())
		if p, err := dec.NewDecoder().Bytes(peek); err == nil {
			peek = p
		}
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	return rowsToMaps(rows, pickHeader(rows, headerRow), headerRow), nil
}

// detectDecoder returns nil when the sample already is UTF-8.
func detectDecoder(sample []byte) encoding.Encoding {
	if len(sample) == 0 || validUTF8Prefix(sample) {
		return nil
	}
	det, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || det == nil {
		return nil
	}
	switch strings.ToLower(det.Charset) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	case "iso-8859-1", "windows-1252":
		return charmap.Windows1252
	default:
		return nil
	}
}

// validUTF8Prefix tolerates a rune cut in half at the end of the sample.
func validUTF8Prefix(b []byte) bool {
	for cut := 0; cut < utf8.UTFMax && cut < len(b); cut++ {
		if utf8.Valid(b[:len(b)-cut]) {
			return true
		}
	}
	return false
}

func sniffDelimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
