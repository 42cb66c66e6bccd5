package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
)

func TestReadCSVComma(t *testing.T) {
	in := "name,product,originalPrice\nRavi Farms,Onion,20\n,,\nGreen Agro , Tomato,\"1,5\"\n"
	recs, err := ReadAnyMaps(strings.NewReader(in), "list.csv", 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ravi Farms", recs[0]["name"])
	assert.Equal(t, "Green Agro", recs[1]["name"])
	assert.Equal(t, "1,5", recs[1]["originalPrice"])
}

func TestReadCSVSemicolonAndBOM(t *testing.T) {
	in := "\uFEFFname;rating\nA;4,5\nB;3\n"
	recs, err := ReadAnyMaps(strings.NewReader(in), "LIST.CSV", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0]["name"])
	assert.Equal(t, "4,5", recs[0]["rating"])
}

func TestReadCSVHeaderRow(t *testing.T) {
	in := "exported 2024-01-01\nname,price\nA,1\n"
	recs, err := ReadAnyMaps(strings.NewReader(in), "x.csv", 2)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0]["price"])
}

func TestPickHeaderFillsBlanksAndDuplicates(t *testing.T) {
	h := pickHeader([][]string{{"name", "", "name"}}, 1)
	assert.Equal(t, []string{"name", "Column 2", "name (2)"}, h)
}

func TestPickHeaderSuffixDoesNotCollide(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a", "a (2)", "a"}, []string{"a", "a (2)", "a (3)"}},
		{[]string{"a", "a", "a (2)"}, []string{"a", "a (2)", "a (2) (2)"}},
		{[]string{"Column 2", ""}, []string{"Column 2", "Column 2 (2)"}},
	}
	for _, tt := range tests {
		h := pickHeader([][]string{tt.in}, 1)
		assert.Equal(t, tt.want, h)
	}

	recs, err := ReadAnyMaps(strings.NewReader("a,a (2),a\n1,2,3\n"), "dup.csv", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, Record{"a": "1", "a (2)": "2", "a (3)": "3"}, recs[0])
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "1 200 kg", normalizeCell("  1\u00A0200 \t kg "))
	assert.Equal(t, "", normalizeCell("\uFEFF"))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "product", "rating"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Ravi", "Onion", 4.8}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Sita", "Rice", 3}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	recs, err := ReadAnyMaps(bytes.NewReader(buf.Bytes()), "book.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ravi", recs[0]["name"])
	assert.Equal(t, "4.8", recs[0]["rating"])
	assert.Equal(t, "Rice", recs[1]["product"])
}

func TestUnsupported(t *testing.T) {
	_, err := ReadAnyMaps(strings.NewReader(""), "notes.pdf", 1)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, Supported("notes.pdf"))
	assert.True(t, Supported("a.XLS"))
}

func TestDetectDecoderSkipsUTF8(t *testing.T) {
	assert.Nil(t, detectDecoder([]byte("name,price\n₹20/kg")))
	cut := []byte("ok ₹")
	assert.True(t, validUTF8Prefix(cut[:len(cut)-1]))
}
