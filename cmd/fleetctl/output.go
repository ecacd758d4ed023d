package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonwraymond/fleetsync/api"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// printPage renders one list page, as JSON or as a table plus a paging line.
func printPage[T any](a *app, page api.Page[T], header []string, row func(T) []string) error {
	if a.output == outputJSON {
		return a.printJSON(page)
	}
	rows := make([][]string, len(page.Items))
	for i, item := range page.Items {
		rows[i] = row(item)
	}
	if err := writeTable(a.stdout, header, rows); err != nil {
		return err
	}
	p := page.Pagination
	_, err := fmt.Fprintf(a.stdout, "page %d/%d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
	return err
}

// printFields renders one record as aligned name/value pairs.
func (a *app) printFields(v any, fields [][2]string) error {
	if a.output == outputJSON {
		return a.printJSON(v)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 1, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f[0], f[1])
	}
	return tw.Flush()
}
