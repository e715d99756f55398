package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/motiontwin/internal/planner"
)

var (
	cyan     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	bold     = lipgloss.NewStyle().Bold(true)
	errStyle = red.Bold(true)

	box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return green
	case score >= 50:
		return yellow
	default:
		return red
	}
}

func row(label, value string) string {
	return dim.Render(fmt.Sprintf("%-12s", label)) + value
}

func renderResult(title string, res *planner.Result) string {
	var b strings.Builder
	q := res.Quality

	b.WriteString(cyan.Bold(true).Render(title) + "\n")
	b.WriteString(row("move", fmt.Sprintf("%s -> %s", res.From, res.To)) + "\n")
	if res.Profile != nil {
		b.WriteString(row("profile", fmt.Sprintf("%s, %.3fs, peak %.1f mm/s", res.Profile.Shape, res.Profile.Duration(), res.Profile.MaxVelocity)) + "\n")
	}
	b.WriteString(row("quality", scoreStyle(q.Overall).Render(fmt.Sprintf("%.1f", q.Overall))) + "\n")
	b.WriteString(row("tracking", fmt.Sprintf("%.1f", q.Tracking)) + "\n")
	b.WriteString(row("vibration", fmt.Sprintf("%.1f", q.Vibration)) + "\n")
	b.WriteString(row("rms error", fmt.Sprintf("%.4f mm", q.RMSError)) + "\n")
	b.WriteString(row("max error", fmt.Sprintf("%.4f mm", q.MaxError)) + "\n")

	if res.Optimized {
		b.WriteString(row("optimizer", green.Render(fmt.Sprintf("optimized, cost %.4g", res.Cost))))
	} else {
		b.WriteString(row("optimizer", yellow.Render("closed-form profile")))
		if res.Warning != "" {
			b.WriteString("\n" + dim.Render(res.Warning))
		}
	}
	return box.Render(b.String())
}

func renderPath(path *planner.PathResult) string {
	lines := []string{bold.Render("path summary")}
	for i, seg := range path.Segments {
		lines = append(lines, fmt.Sprintf("%2d  %s -> %s  %s", i+1, seg.From, seg.To,
			scoreStyle(seg.Quality.Overall).Render(fmt.Sprintf("%.1f", seg.Quality.Overall))))
	}
	lines = append(lines, "",
		row("average", scoreStyle(path.Average).Render(fmt.Sprintf("%.1f", path.Average))),
		row("min / max", fmt.Sprintf("%.1f / %.1f", path.Min, path.Max)),
	)
	return box.Render(strings.Join(lines, "\n"))
}
