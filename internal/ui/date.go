package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	partYear = iota
	partMonth
	partDay
	partCount
)

// dateScreen is a year/month/day picker. It stores nothing; the caller gets
// the three parts back as strings.
type dateScreen struct {
	keys   keyMap
	year   int
	month  time.Month
	day    int
	part   int
	status string
}

func newDateScreen(keys keyMap, date string) *dateScreen {
	s := &dateScreen{keys: keys}
	y, m, d, err := splitDate(date)
	if err != nil {
		now := time.Now()
		y, m, d = now.Year(), int(now.Month()), now.Day()
		s.status = fmt.Sprintf("could not read %q, showing today", date)
	}
	// Out-of-range parts roll over the way a calendar picker would.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
	s.year, s.month, s.day = t.Date()
	return s
}

// splitDate splits "YYYY/MM/DD" on "/". Only the shape is checked, not the
// ranges.
func splitDate(date string) (year, month, day int, err error) {
	parts := strings.Split(date, "/")
	if len(parts) < 3 {
		return 0, 0, 0, fmt.Errorf("date %q: want year/month/day", date)
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("date %q: %w", date, err)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (s *dateScreen) shift(delta int) {
	switch s.part {
	case partYear:
		s.year += delta
	case partMonth:
		t := time.Date(s.year, s.month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
		s.year, s.month = t.Year(), t.Month()
	case partDay:
		t := time.Date(s.year, s.month, s.day+delta, 0, 0, 0, 0, time.UTC)
		s.year, s.month, s.day = t.Date()
		return
	}
	if n := daysIn(s.year, s.month); s.day > n {
		s.day = n
	}
}

func (s *dateScreen) picked() result {
	return result{
		ok:    true,
		year:  fmt.Sprintf("%04d", s.year),
		month: fmt.Sprintf("%02d", int(s.month)),
		day:   fmt.Sprintf("%02d", s.day),
	}
}

func (s *dateScreen) resume() (tea.Cmd, error) { return nil, nil }

func (s *dateScreen) pause() error { return nil }

func (s *dateScreen) onResult(request, result) error { return nil }

func (s *dateScreen) update(msg tea.Msg) (tea.Cmd, *transition, error) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil, nil
	}
	switch {
	case key.Matches(km, s.keys.cancel):
		return nil, finishScreen(result{}), nil
	case key.Matches(km, s.keys.activate):
		return nil, finishScreen(s.picked()), nil
	case key.Matches(km, s.keys.left):
		s.part = (s.part + partCount - 1) % partCount
	case key.Matches(km, s.keys.right):
		s.part = (s.part + 1) % partCount
	case key.Matches(km, s.keys.up):
		s.shift(1)
	case key.Matches(km, s.keys.down):
		s.shift(-1)
	}
	return nil, nil, nil
}

func (s *dateScreen) view() string {
	p := s.picked()
	cells := []string{p.year, p.month, p.day}
	for i, c := range cells {
		cells[i] = button(c, i == s.part)
	}
	var b strings.Builder
	b.WriteString(accentStyle.Render("Due date"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, cells[0], " / ", cells[1], " / ", cells[2]))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(time.Date(s.year, s.month, s.day, 0, 0, 0, 0, time.UTC).Weekday().String()))
	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(s.status))
	}
	return b.String()
}

func (s *dateScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.left, s.keys.right, s.keys.up, s.keys.down, s.keys.activate, s.keys.cancel}
}
