package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

type column struct {
	title string
	right bool
}

// writeTable prints rows under the column titles, padded to the widest cell
// of each column in terminal cells.
func writeTable(w io.Writer, cols []column, rows [][]string) error {
	widths := lo.Map(cols, func(c column, _ int) int {
		return runewidth.StringWidth(c.title)
	})
	for _, row := range rows {
		for i := range cols {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	titles := lo.Map(cols, func(c column, _ int) string { return c.title })
	for _, row := range append([][]string{titles}, rows...) {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = pad(cell(row, i), widths[i], c.right)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func pad(value string, width int, right bool) string {
	gap := width - runewidth.StringWidth(value)
	if gap <= 0 {
		return value
	}
	if right {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}
