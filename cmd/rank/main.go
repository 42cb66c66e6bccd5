// Command rank ranks suppliers from a spreadsheet or JSON file and prints
// the top recommendations.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"recommend-service/internal/directory"
	"recommend-service/internal/fileio"
	"recommend-service/internal/recommend/model"
	"recommend-service/internal/recommend/service"
)

type options struct {
	lat, lon  float64
	commodity string
	sort      string
	limit     int
	headerRow int
	output    string
	color     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opt := &options{}
	cmd := &cobra.Command{
		Use:   "rank FILE",
		Short: "Rank suppliers from an .xlsx, .xls, .csv or .json file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opt.color {
			case "no":
				color.NoColor = true
			case "yes":
				color.NoColor = false
			}
			cands, err := loadFile(args[0], opt.headerRow)
			if err != nil {
				return err
			}
			var loc *model.Location
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				loc = &model.Location{Latitude: opt.lat, Longitude: opt.lon}
			}
			return run(cmd.OutOrStdout(), cands, loc, opt)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opt.lat, "lat", 0, "buyer latitude")
	f.Float64Var(&opt.lon, "lon", 0, "buyer longitude")
	f.StringVar(&opt.commodity, "commodity", model.CommodityAll, "commodity filter")
	f.StringVar(&opt.sort, "sort", string(model.SortSmart), "smart | price | distance | rating")
	f.IntVar(&opt.limit, "limit", model.DefaultTopN, "number of suppliers to show")
	f.IntVar(&opt.headerRow, "header-row", 1, "1-based header row of spreadsheets")
	f.StringVarP(&opt.output, "output", "o", "text", "text | json")
	f.StringVar(&opt.color, "color", "auto", "yes | no | auto")
	return cmd
}

// loadFile reads suppliers from JSON (a list or {"suppliers": [...]}) or
// from a spreadsheet.
func loadFile(path string, headerRow int) ([]model.Supplier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeSuppliers(data)
	}
	recs, err := fileio.ReadAnyMaps(bytes.NewReader(data), path, headerRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cands, _ := directory.FromRecords(recs, nil)
	return cands, nil
}

func decodeSuppliers(data []byte) ([]model.Supplier, error) {
	data = bytes.TrimSpace(data)
	var list []model.Supplier
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode suppliers: %w", err)
		}
		return list, nil
	}
	var wrapped struct {
		Suppliers []model.Supplier `json:"suppliers"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	return wrapped.Suppliers, nil
}

func run(w io.Writer, cands []model.Supplier, loc *model.Location, opt *options) error {
	mode := model.ParseSortMode(opt.sort)
	res := service.Recommend(service.Request{
		Suppliers: cands,
		Location:  loc,
		Commodity: opt.commodity,
		Sort:      mode,
		Limit:     opt.limit,
	})

	switch opt.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonRows(res.Top))
	case "text", "":
		return printTable(w, res, loc != nil, mode)
	default:
		return fmt.Errorf("unknown output %q (text | json)", opt.output)
	}
}
