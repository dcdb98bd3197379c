package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskr/internal/api"
)

// statsModel charts the tasks of the loaded page.
type statsModel struct {
	width  int
	height int

	tasks  []api.Task
	done   int
	open   int
	offset int // 7-day blocks back from today (0 = current)

	statusChart barchart.Model
	dailyChart  barchart.Model
}

func newStatsModel() statsModel {
	return statsModel{
		statusChart: barchart.New(30, 8),
		dailyChart:  barchart.New(60, 10),
	}
}

func (s *statsModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildCharts()
}

// refresh recomputes the charts from tasks.
func (s *statsModel) refresh(tasks []api.Task) {
	s.tasks = tasks
	s.done, s.open = 0, 0
	for _, t := range tasks {
		if t.Done {
			s.done++
		} else {
			s.open++
		}
	}
	s.buildCharts()
}

func (s statsModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	end := today.AddDate(0, 0, 1-7*s.offset)
	return end.AddDate(0, 0, -7), end
}

func (s statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			s.offset++
			s.buildCharts()
		case key.Matches(msg, keys.Right):
			if s.offset > 0 {
				s.offset--
			}
			s.buildCharts()
		}
	}
	return s, nil
}

func (s *statsModel) buildCharts() {
	chartHeight := 10
	if s.height > 30 {
		chartHeight = 14
	}

	s.statusChart = barchart.New(max(s.width/3, 24), chartHeight)
	s.statusChart.PushAll([]barchart.BarData{
		{Label: "Done", Values: []barchart.BarValue{{Name: "Done", Value: float64(s.done), Style: successStyle}}},
		{Label: "Open", Values: []barchart.BarValue{{Name: "Open", Value: float64(s.open), Style: warningStyle}}},
	})
	s.statusChart.Draw()

	s.dailyChart = barchart.New(max(s.width-s.width/3-12, 30), chartHeight)
	from, to := s.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		next := d.AddDate(0, 0, 1)
		var created, completed int
		for _, t := range s.tasks {
			c := t.CreatedAt.Local()
			if !c.Before(d) && c.Before(next) {
				created++
				if t.Done {
					completed++
				}
			}
		}
		values := []barchart.BarValue{
			{Name: "Done", Value: float64(completed), Style: successStyle},
			{Name: "Open", Value: float64(created - completed), Style: warningStyle},
		}
		if created == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{Label: d.Format("Mon 02"), Values: values})
	}
	s.dailyChart.PushAll(bars)
	s.dailyChart.Draw()
}

func (s statsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Stats")

	if len(s.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No tasks loaded. Open the Tasks view first."),
		))
	}

	from, to := s.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))

	pct := 0
	if total := s.done + s.open; total > 0 {
		pct = s.done * 100 / total
	}
	summary := strings.Join([]string{
		successStyle.Render(fmt.Sprintf("● %d done", s.done)),
		warningStyle.Render(fmt.Sprintf("● %d open", s.open)),
		highlightStyle.Render(fmt.Sprintf("%d%% complete", pct)),
	}, "  ")

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		s.statusChart.View(), "    ", s.dailyChart.View(),
	)

	nav := mutedStyle.Render("  ←/→: shift days  (loaded page only)")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", dateLabel),
		"", summary, "", charts, "", nav,
	))
}
