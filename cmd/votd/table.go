package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// writeTable renders a rounded table on terminals and tab separated lines
// everywhere else.
func writeTable(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	if len(headers) == 0 {
		return
	}
	if !isTerminal(out) {
		fmt.Fprintln(out, strings.Join(headers, "\t"))
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(padRow(row, len(headers)), "\t"))
		}
		return
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, columns)
		for i, cell := range padRow(row, columns) {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func padRow(row []string, columns int) []string {
	out := make([]string, columns)
	copy(out, row)
	return out
}
