package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"doit/internal/storage"
)

type editField int

const (
	fieldTitle editField = iota
	fieldBody
	fieldDate
	fieldConfirm
	fieldClose
	fieldCount
)

// editScreen creates or edits one item. Whatever is on screen is written
// to the store every time the screen pauses.
type editScreen struct {
	store *storage.Store
	keys  keyMap
	id    int64 // 0 until the item has been stored
	title textinput.Model
	body  textarea.Model
	date  string
	state storage.State
	focus editField

	// loaded is the stored row; shownTitle and shownBody are the widget
	// values right after loading it. An untouched field saves loaded's text,
	// since the widgets rewrite tabs and newlines.
	loaded     storage.Item
	shownTitle string
	shownBody  string
}

func newEditScreen(store *storage.Store, keys keyMap, id int64) *editScreen {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 0
	ti.Width = 40

	ta := textarea.New()
	ta.Placeholder = "Details"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(40)
	ta.SetHeight(4)

	return &editScreen{
		store: store,
		keys:  keys,
		id:    id,
		title: ti,
		body:  ta,
		state: storage.StateOpen,
	}
}

// resume fills the fields from the stored row, or defaults the due date to
// today for a new item.
func (s *editScreen) resume() (tea.Cmd, error) {
	if s.id != 0 {
		it, err := s.store.FetchByID(s.id)
		if err != nil {
			return nil, fmt.Errorf("load item: %w", err)
		}
		s.title.SetValue(it.Title)
		s.body.SetValue(it.Body)
		s.loaded = it
		s.shownTitle = s.title.Value()
		s.shownBody = s.body.Value()
		s.date = it.Date
		s.state = it.State
	} else {
		s.date = storage.Today()
	}
	return s.setFocus(s.focus), nil
}

func (s *editScreen) pause() error {
	return s.save()
}

func (s *editScreen) save() error {
	title := s.title.Value()
	body := s.body.Value()
	if s.loaded.ID != 0 {
		if title == s.shownTitle {
			title = s.loaded.Title
		}
		if body == s.shownBody {
			body = s.loaded.Body
		}
	}
	if s.id == 0 {
		id, err := s.store.Create(title, body, s.date, s.state)
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if id > 0 {
			s.id = id
		}
		return nil
	}
	if _, err := s.store.Update(s.id, title, body, s.date, s.state); err != nil {
		return fmt.Errorf("update item %d: %w", s.id, err)
	}
	return nil
}

func (s *editScreen) onResult(req request, res result) error {
	if req != requestDate || !res.ok {
		return nil
	}
	s.date = res.date()
	return s.save()
}

func (s *editScreen) update(msg tea.Msg) (tea.Cmd, *transition, error) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - 10
		if w < 20 {
			w = 20
		}
		s.title.Width = w
		s.body.SetWidth(w)
		return nil, nil, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.cancel):
			return nil, finishScreen(result{}), nil
		case key.Matches(msg, s.keys.confirm):
			return nil, finishScreen(result{ok: true}), nil
		case key.Matches(msg, s.keys.closeItem):
			s.state = storage.StateClosed
			return nil, finishScreen(result{ok: true}), nil
		case key.Matches(msg, s.keys.pickDate):
			return nil, startScreen(requestDate, newDateScreen(s.keys, s.date)), nil
		case key.Matches(msg, s.keys.nextField):
			return s.setFocus((s.focus + 1) % fieldCount), nil, nil
		case key.Matches(msg, s.keys.prevField):
			return s.setFocus((s.focus + fieldCount - 1) % fieldCount), nil, nil
		case key.Matches(msg, s.keys.activate) && s.focus != fieldBody:
			return s.activate()
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldTitle:
		s.title, cmd = s.title.Update(msg)
	case fieldBody:
		s.body, cmd = s.body.Update(msg)
	}
	return cmd, nil, nil
}

func (s *editScreen) activate() (tea.Cmd, *transition, error) {
	switch s.focus {
	case fieldTitle:
		return s.setFocus(fieldBody), nil, nil
	case fieldDate:
		return nil, startScreen(requestDate, newDateScreen(s.keys, s.date)), nil
	case fieldConfirm:
		return nil, finishScreen(result{ok: true}), nil
	case fieldClose:
		s.state = storage.StateClosed
		return nil, finishScreen(result{ok: true}), nil
	}
	return nil, nil, nil
}

func (s *editScreen) setFocus(f editField) tea.Cmd {
	s.focus = f
	s.title.Blur()
	s.body.Blur()
	switch f {
	case fieldTitle:
		return s.title.Focus()
	case fieldBody:
		return s.body.Focus()
	}
	return nil
}

func (s *editScreen) view() string {
	var b strings.Builder
	if s.id == 0 {
		b.WriteString(accentStyle.Render("New item"))
	} else {
		b.WriteString(accentStyle.Render(fmt.Sprintf("Item #%d", s.id)))
		if s.state == storage.StateClosed {
			b.WriteString(" " + mutedStyle.Render("(closed)"))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(s.fieldLabel(fieldTitle, "Title"))
	b.WriteString("\n")
	b.WriteString(s.title.View())
	b.WriteString("\n\n")
	b.WriteString(s.fieldLabel(fieldBody, "Body"))
	b.WriteString("\n")
	b.WriteString(s.body.View())
	b.WriteString("\n\n")
	b.WriteString(s.fieldLabel(fieldDate, "Due"))
	b.WriteString("\n")
	b.WriteString(button(s.date, s.focus == fieldDate))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		button("Confirm", s.focus == fieldConfirm),
		" ",
		button("Close", s.focus == fieldClose),
	))
	return b.String()
}

func (s *editScreen) fieldLabel(f editField, name string) string {
	if s.focus == f {
		return titleStyle.Render("> " + name)
	}
	return mutedStyle.Render("  " + name)
}

func (s *editScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.nextField, s.keys.activate, s.keys.pickDate, s.keys.confirm, s.keys.closeItem, s.keys.cancel}
}
