package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/neexbeast/tourfront/internal/tour"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// tourRow is the flattened form printed by every output format.
type tourRow struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Duration  string  `json:"duration" yaml:"duration"`
	SalePrice string  `json:"sale_price" yaml:"sale_price"`
	Location  string  `json:"location,omitempty" yaml:"location,omitempty"`
	Score     float64 `json:"score" yaml:"score"`
	Reviews   int     `json:"reviews" yaml:"reviews"`
}

func toRow(t tour.Tour) tourRow {
	row := tourRow{
		ID:        t.ID.String(),
		Title:     t.Title,
		Duration:  t.Duration,
		SalePrice: t.SalePrice.String(),
		Score:     t.ReviewScore.TotalScore,
		Reviews:   t.ReviewScore.TotalReviews,
	}
	if t.Location != nil {
		row.Location = t.Location.Name
	}
	return row
}

func renderTours(w io.Writer, format string, tours []tour.Tour) error {
	rows := make([]tourRow, 0, len(tours))
	for _, t := range tours {
		rows = append(rows, toRow(t))
	}

	switch format {
	case formatJSON:
		return writeJSON(w, rows)
	case formatYAML:
		return writeYAML(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDURATION\tPRICE\tLOCATION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Duration, r.SalePrice, r.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d tours\n", len(rows))
	return err
}

type detailRow struct {
	tourRow     `yaml:",inline"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Address     string   `json:"address,omitempty" yaml:"address,omitempty"`
	Highlights  []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

func renderDetail(w io.Writer, format string, d *tour.TourDetail) error {
	row := detailRow{
		tourRow:     toRow(d.Tour),
		Description: d.Description,
		Address:     d.Address,
		Highlights:  d.Highlights,
	}

	switch format {
	case formatJSON:
		return writeJSON(w, row)
	case formatYAML:
		return writeYAML(w, row)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", row.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", row.Title)
	fmt.Fprintf(tw, "Duration:\t%s\n", row.Duration)
	fmt.Fprintf(tw, "Price:\t%s\n", row.SalePrice)
	if row.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", row.Location)
	}
	if row.Address != "" {
		fmt.Fprintf(tw, "Address:\t%s\n", row.Address)
	}
	fmt.Fprintf(tw, "Reviews:\t%.1f (%d)\n", row.Score, row.Reviews)
	if len(row.Highlights) > 0 {
		fmt.Fprintf(tw, "Highlights:\t%s\n", strings.Join(row.Highlights, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if row.Description != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", row.Description)
		return err
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
