package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gmdkit/internal/stats"
)

// RenderStats renders per-file translation counts as a terminal table,
// already sorted by the caller, with a totals row at the bottom.
func RenderStats(counts []stats.FileCount) string {
	styles := DefaultStyles()

	headers := []string{"File", "Rows", "Translated", "%"}
	rows := make([][]string, 0, len(counts)+1)
	for _, c := range counts {
		rows = append(rows, []string{
			c.Path,
			fmt.Sprintf("%d", c.Rows),
			fmt.Sprintf("%d", c.Translated),
			fmt.Sprintf("%.1f", c.Percent()),
		})
	}
	total := stats.Total(counts)
	rows = append(rows, []string{
		"Total",
		fmt.Sprintf("%d", total.Rows),
		fmt.Sprintf("%d", total.Translated),
		fmt.Sprintf("%.1f", total.Percent()),
	})

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	header := styles.Bold.Padding(0, 1)

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(header.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")

	lineWidth := 0
	for _, w := range widths {
		lineWidth += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", lineWidth)))
	sb.WriteString("\n")

	for r, row := range rows {
		style := cell
		if r == len(rows)-1 {
			style = header
		}
		for i, c := range row {
			sb.WriteString(style.Width(widths[i] + 2).Render(c))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
