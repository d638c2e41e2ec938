package storage

import "time"

// DateLayout is the due-date format stored in the date column.
const DateLayout = "2006/01/02"

type State string

const (
	StateOpen   State = "open"
	StateClosed State = "close"
)

func (s State) Valid() bool {
	return s == StateOpen || s == StateClosed
}

// Item is one row of the todo_item table.
type Item struct {
	ID    int64
	Title string
	Body  string
	Date  string
	State State
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
