package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvList = "name,product,originalPrice,rating,lat,lon\nRavi,Onion,18,4.6,0,0.01\nSita,Onion,15,3.9,0,0.2\nMohan,Rice,40,4.9,0,0\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestRankCSVText(t *testing.T) {
	p := writeTemp(t, "list.csv", csvList)
	out := execute(t, p, "--commodity", "Onion", "--lat", "0", "--lon", "0", "--color", "no")
	assert.Contains(t, out, "Ravi")
	assert.Contains(t, out, "Sita")
	assert.NotContains(t, out, "Mohan")
	assert.Contains(t, out, "best price")
	assert.Contains(t, out, "km")
	assert.Contains(t, out, "Showing 2 of 2 matching suppliers (sort: smart)")
}

func TestRankJSONInputAndOutput(t *testing.T) {
	p := writeTemp(t, "list.json", `{"suppliers":[
		{"id":"a","name":"A","product":"Dal","originalPrice":"90/kg","rating":4.5},
		{"id":"b","name":"B","product":"Dal","originalPrice":"n/a","rating":5}
	]}`)
	out := execute(t, p, "--sort", "price", "-o", "json")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["id"])
	assert.EqualValues(t, 90, rows[0]["priceValue"])
	assert.Nil(t, rows[1]["priceValue"])
	assert.Nil(t, rows[1]["score"])
}

func TestRankEmpty(t *testing.T) {
	p := writeTemp(t, "list.json", `[]`)
	out := execute(t, p)
	assert.Contains(t, out, "No suppliers found")
}

func TestRankErrors(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{writeTemp(t, "x.pdf", "x")})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{writeTemp(t, "l.json", "[]"), "-o", "yaml"})
	assert.Error(t, cmd.Execute())
}
