package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"ciid-go/internal/ciid"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeDuplicates prints one line per duplicated path. Terminals get a table;
// pipes get "<fingerprint>\t<path>" lines.
func writeDuplicates(w io.Writer, groups []ciid.DuplicateGroup, pretty bool) error {
	if !pretty {
		for _, g := range groups {
			for _, p := range g.Paths {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", g.Fingerprint, p); err != nil {
					return err
				}
			}
		}
		return nil
	}

	var rows [][]string
	for _, g := range groups {
		for i, p := range g.Paths {
			fp, count := "", ""
			if i == 0 {
				fp, count = shortFingerprint(g.Fingerprint), strconv.Itoa(len(g.Paths))
			}
			rows = append(rows, []string{fp, count, p})
		}
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"Fingerprint", "Copies", "Path"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft}))
	return err
}

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
