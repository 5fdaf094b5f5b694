// Package termview draws calendar views for the terminal.
package termview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/belphemur/haushaltsheld/internal/calendar"
	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/session"
)

// Dot marks one assignee's tasks on a day.
const Dot = "●"

const cellWidth = 9

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	headerStyle  = lipgloss.NewStyle().Width(cellWidth).Foreground(lipgloss.Color("246"))
	cellStyle    = lipgloss.NewStyle().Width(cellWidth)
	todayStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("220"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))
	defaultColor = lipgloss.Color("252")
)

func dots(colors []calendar.Color) string {
	var b strings.Builder
	for _, c := range colors {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(Dot))
	}
	return b.String()
}

func dayLabel(day int, today bool) string {
	label := fmt.Sprintf("%2d", day)
	if today {
		return todayStyle.Render(label)
	}
	return label
}

// RenderMonth writes the month grid: a title, the weekday header and six
// rows of seven cells.
func RenderMonth(w io.Writer, view session.MonthView) error {
	header := make([]string, 0, len(view.DayNames))
	for _, name := range view.DayNames {
		header = append(header, headerStyle.Render(name))
	}

	lines := []string{titleStyle.Render(view.Title), lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for row := 0; row < calendar.GridRows; row++ {
		cells := make([]string, 0, calendar.GridColumns)
		for col := 0; col < calendar.GridColumns; col++ {
			i := row*calendar.GridColumns + col
			if i >= len(view.Cells) || view.Cells[i].IsPadding() {
				cells = append(cells, cellStyle.Render(""))
				continue
			}
			c := view.Cells[i]
			cells = append(cells, cellStyle.Render(dayLabel(c.DayNumber, c.IsToday)+" "+dots(c.TaskColors)))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

// RenderWeek writes the week strip, one line per day.
func RenderWeek(w io.Writer, view session.WeekView) error {
	lines := []string{titleStyle.Render(view.Title)}
	for _, it := range view.Items {
		name := headerStyle.Render(it.DayName)
		lines = append(lines, name+dayLabel(it.DayNumber, it.IsToday)+" "+dots(it.TaskColors))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderDay lists the tasks due on key, each prefixed by its assignee's color.
func RenderDay(w io.Writer, key calendar.DateKey, tasks []household.Task, colors calendar.ColorMap) error {
	lines := []string{titleStyle.Render(key.String())}
	if len(tasks) == 0 {
		lines = append(lines, mutedStyle.Render("no tasks"))
	}
	for _, t := range tasks {
		dot := lipgloss.NewStyle().Foreground(defaultColor).Render(" ")
		if c := colors.Lookup(t.AssignedUserID); c != calendar.NoColor {
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(Dot)
		}
		title := t.Title
		if t.IsCompleted() {
			title = doneStyle.Render(title)
		}
		line := dot + " " + title
		if t.AssignedUserName != "" {
			line += mutedStyle.Render(" (" + t.AssignedUserName + ")")
		}
		lines = append(lines, line)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
