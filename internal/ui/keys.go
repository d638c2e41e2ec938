package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"doit/internal/config"
)

type keyMap struct {
	quit     key.Binding
	add      key.Binding
	open     key.Binding
	activate key.Binding
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	sel      key.Binding
	del      key.Binding

	nextField key.Binding
	prevField key.Binding
	pickDate  key.Binding
	confirm   key.Binding
	closeItem key.Binding
	cancel    key.Binding
}

func newKeyMap(k config.Keymap) keyMap {
	return keyMap{
		quit:      key.NewBinding(key.WithKeys(k.Quit), key.WithHelp(label(k.Quit), "quit")),
		add:       key.NewBinding(key.WithKeys(k.Add), key.WithHelp(label(k.Add), "add")),
		open:      key.NewBinding(key.WithKeys(k.Open), key.WithHelp(label(k.Open), "edit")),
		activate:  key.NewBinding(key.WithKeys(k.Press), key.WithHelp(label(k.Press), "press")),
		up:        key.NewBinding(key.WithKeys(k.Up, "up"), key.WithHelp(label(k.Up)+"/↑", "up")),
		down:      key.NewBinding(key.WithKeys(k.Down, "down"), key.WithHelp(label(k.Down)+"/↓", "down")),
		left:      key.NewBinding(key.WithKeys(k.Left, "left"), key.WithHelp(label(k.Left)+"/←", "prev")),
		right:     key.NewBinding(key.WithKeys(k.Right, "right"), key.WithHelp(label(k.Right)+"/→", "next")),
		sel:       key.NewBinding(key.WithKeys(k.Select), key.WithHelp(label(k.Select), "select")),
		del:       key.NewBinding(key.WithKeys(k.Delete), key.WithHelp(label(k.Delete), "delete")),
		nextField: key.NewBinding(key.WithKeys(k.NextField), key.WithHelp(label(k.NextField), "next field")),
		prevField: key.NewBinding(key.WithKeys(k.PrevField), key.WithHelp(label(k.PrevField), "prev field")),
		pickDate:  key.NewBinding(key.WithKeys(k.PickDate), key.WithHelp(label(k.PickDate), "due date")),
		confirm:   key.NewBinding(key.WithKeys(k.Confirm), key.WithHelp(label(k.Confirm), "confirm")),
		closeItem: key.NewBinding(key.WithKeys(k.CloseItem), key.WithHelp(label(k.CloseItem), "close item")),
		cancel:    key.NewBinding(key.WithKeys(k.Cancel), key.WithHelp(label(k.Cancel), "back")),
	}
}

func label(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
