package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"doit/internal/storage"
)

// listScreen shows every open item.
type listScreen struct {
	store      *storage.Store
	keys       keyMap
	items      []storage.Item
	cursor     int
	selected   map[int64]bool
	confirmDel bool
	pendingDel []int64
	status     string
}

func newListScreen(store *storage.Store, keys keyMap) *listScreen {
	return &listScreen{
		store:    store,
		keys:     keys,
		selected: map[int64]bool{},
		status:   fmt.Sprintf("Press '%s' to add an item.", label(keys.add.Keys()[0])),
	}
}

func (s *listScreen) refresh() error {
	items, err := s.store.FetchAllByState(storage.StateOpen)
	if err != nil {
		return fmt.Errorf("load open items: %w", err)
	}
	s.items = items
	s.cursor = clampCursor(s.cursor, len(items))
	present := make(map[int64]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	for id := range s.selected {
		if !present[id] {
			delete(s.selected, id)
		}
	}
	return nil
}

func (s *listScreen) resume() (tea.Cmd, error) {
	return nil, s.refresh()
}

func (s *listScreen) pause() error {
	return nil
}

func (s *listScreen) onResult(req request, res result) error {
	switch req {
	case requestCreate, requestEdit:
		return s.refresh()
	}
	return nil
}

func (s *listScreen) update(msg tea.Msg) (tea.Cmd, *transition, error) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil, nil
	}
	if s.confirmDel {
		return nil, nil, s.updateDeleteConfirm(km.String())
	}

	switch {
	case key.Matches(km, s.keys.quit):
		return nil, finishScreen(result{ok: true}), nil
	case key.Matches(km, s.keys.down):
		s.cursor = clampCursor(s.cursor+1, len(s.items))
	case key.Matches(km, s.keys.up):
		s.cursor = clampCursor(s.cursor-1, len(s.items))
	case key.Matches(km, s.keys.sel):
		if len(s.items) == 0 {
			return nil, nil, nil
		}
		id := s.items[s.cursor].ID
		if s.selected[id] {
			delete(s.selected, id)
		} else {
			s.selected[id] = true
		}
		s.status = fmt.Sprintf("%d selected", len(s.selected))
	case key.Matches(km, s.keys.add):
		return nil, startScreen(requestCreate, newEditScreen(s.store, s.keys, 0)), nil
	case key.Matches(km, s.keys.open):
		if len(s.items) == 0 {
			s.status = "No items"
			return nil, nil, nil
		}
		id := s.items[s.cursor].ID
		return nil, startScreen(requestEdit, newEditScreen(s.store, s.keys, id)), nil
	case key.Matches(km, s.keys.del):
		ids := s.deletionTargets()
		if len(ids) == 0 {
			return nil, nil, nil
		}
		s.confirmDel = true
		s.pendingDel = ids
		if len(ids) == 1 {
			s.status = fmt.Sprintf("Delete \"%s\"? y/n", s.titleOf(ids[0]))
		} else {
			s.status = fmt.Sprintf("Delete %d items? y/n", len(ids))
		}
	}
	return nil, nil, nil
}

// deletionTargets returns the selected ids in list order, or the item under
// the cursor when nothing is selected.
func (s *listScreen) deletionTargets() []int64 {
	if len(s.items) == 0 {
		return nil
	}
	var ids []int64
	for _, it := range s.items {
		if s.selected[it.ID] {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		ids = []int64{s.items[s.cursor].ID}
	}
	return ids
}

func (s *listScreen) titleOf(id int64) string {
	for _, it := range s.items {
		if it.ID == id {
			return it.Title
		}
	}
	return ""
}

func (s *listScreen) updateDeleteConfirm(k string) error {
	switch k {
	case "n", "N", "esc":
		s.status = "Delete cancelled"
	case "y", "Y":
		if _, err := s.store.Delete(s.pendingDel...); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		for _, id := range s.pendingDel {
			delete(s.selected, id)
		}
		if len(s.pendingDel) == 1 {
			s.status = "Deleted item"
		} else {
			s.status = fmt.Sprintf("Deleted %d items", len(s.pendingDel))
		}
		if err := s.refresh(); err != nil {
			return err
		}
	default:
		return nil
	}
	s.confirmDel = false
	s.pendingDel = nil
	return nil
}

func (s *listScreen) view() string {
	var b strings.Builder
	b.WriteString(accentStyle.Render(fmt.Sprintf("Open items (%d)", len(s.items))))
	b.WriteString("\n\n")
	if len(s.items) == 0 {
		b.WriteString(mutedStyle.Render("Nothing to do."))
		b.WriteString("\n")
	}
	for i, it := range s.items {
		mark := "[ ]"
		if s.selected[it.ID] {
			mark = markedStyle.Render("[*]")
		}
		line := fmt.Sprintf("%s %s  %s", mark, it.Title, mutedStyle.Render(it.Date))
		if i == s.cursor {
			line = selectedStyle.Render(">") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if s.confirmDel {
		b.WriteString(warnStyle.Render(s.status))
	} else {
		b.WriteString(s.status)
	}
	return b.String()
}

func (s *listScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.up, s.keys.down, s.keys.add, s.keys.open, s.keys.sel, s.keys.del, s.keys.quit}
}
