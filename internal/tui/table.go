package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table prints aligned columns. Widths are measured in terminal cells so
// wide runes in descriptions do not break alignment.
func (o *TTYOutput) table(headers []string, rows [][]string) {
	widths := columnWidths(headers, rows)

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = o.styles.Header.Render(padRight(h, widths[i]))
	}
	_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts[i] = padRight(cell, widths[i])
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	return widths
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
