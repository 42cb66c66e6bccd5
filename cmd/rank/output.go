package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"recommend-service/internal/recommend/model"
	"recommend-service/internal/recommend/service"
)

var tagColors = map[model.Tag]*color.Color{
	model.TagTopRated:  color.New(color.FgGreen, color.Bold),
	model.TagNearest:   color.New(color.FgCyan),
	model.TagBestPrice: color.New(color.FgYellow, color.Bold),
}

func colorTags(tags []model.Tag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if c, ok := tagColors[t]; ok {
			parts = append(parts, c.Sprint(string(t)))
		} else {
			parts = append(parts, string(t))
		}
	}
	return strings.Join(parts, ", ")
}

func num(f float64, prec int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

func printTable(w io.Writer, res service.Result, withDistance bool, mode model.SortMode) error {
	if len(res.Top) == 0 {
		_, err := fmt.Fprintln(w, "No suppliers found for this commodity.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Supplier", "Product", "Price", "Rating", "Distance", "Score", "Tags"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range res.Top {
		dist := "-"
		if withDistance {
			dist = num(r.DistanceKm, 1) + " km"
		}
		price := r.Price
		if price == "" {
			price = num(r.PriceValue, 2)
		}
		if r.HasTag(model.TagBestPrice) {
			price = tagColors[model.TagBestPrice].Sprint(price)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Name,
			r.Product,
			price,
			num(r.Rating, 1),
			dist,
			num(r.Score, 1),
			colorTags(r.Tags),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d matching suppliers (sort: %s)\n", len(res.Top), res.Matched, mode)
	return err
}

// jsonRow mirrors model.Ranked with non-finite numbers as null.
type jsonRow struct {
	model.Supplier
	DistanceKm *float64    `json:"distanceKm"`
	PriceValue *float64    `json:"priceValue"`
	Score      *float64    `json:"score"`
	Tags       []model.Tag `json:"tags"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func jsonRows(top []model.Ranked) []jsonRow {
	out := make([]jsonRow, 0, len(top))
	for _, r := range top {
		tags := r.Tags
		if tags == nil {
			tags = []model.Tag{}
		}
		out = append(out, jsonRow{Supplier: r.Supplier, DistanceKm: finite(r.DistanceKm), PriceValue: finite(r.PriceValue), Score: finite(r.Score), Tags: tags})
	}
	return out
}
