package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"twfollowers/pkg/followers"
)

const (
	colRank = iota
	colUsername
	colFollowers
	colImage
)

// RenderReport formats a report as a bordered table followed by the
// failures, if any
func RenderReport(report *followers.Report) string {
	if report == nil || len(report.Entries) == 0 {
		var b strings.Builder
		b.WriteString(footerStyle.Render("No followers to show."))
		if report != nil {
			if msg := report.ErrorMessage(); msg != "" {
				b.WriteString("\n" + warningStyle.Render(msg))
			}
		}
		return b.String()
	}

	rows := make([][]string, 0, len(report.Entries))
	for i, e := range report.Entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			"@" + e.Username,
			humanize.Comma(e.FollowersCount),
			e.ProfileImageURL,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "USERNAME", "FOLLOWERS", "PROFILE IMAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == colFollowers || col == colRank:
				return countStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d of %d accounts resolved, generated %s",
		len(report.Entries), report.Total, humanize.Time(report.GeneratedAt))))
	if msg := report.ErrorMessage(); msg != "" {
		b.WriteString("\n" + warningStyle.Render(msg))
	}
	return b.String()
}
