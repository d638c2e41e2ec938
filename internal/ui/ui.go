package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"doit/internal/config"
	"doit/internal/logging"
	"doit/internal/storage"
)

// request says why a child screen was started; the parent sees it again
// together with the child's result.
type request int

const (
	requestRoot request = iota
	requestCreate
	requestEdit
	requestDate
)

func (r request) String() string {
	switch r {
	case requestCreate:
		return "create"
	case requestEdit:
		return "edit"
	case requestDate:
		return "date"
	default:
		return "root"
	}
}

type result struct {
	ok    bool
	year  string
	month string
	day   string
}

func (r result) date() string {
	return r.year + "/" + r.month + "/" + r.day
}

// transition is what a screen asks of the stack after handling a message:
// either start a child or finish itself.
type transition struct {
	start  screen
	req    request
	finish bool
	res    result
}

func startScreen(req request, s screen) *transition {
	return &transition{start: s, req: req}
}

func finishScreen(res result) *transition {
	return &transition{finish: true, res: res}
}

type screen interface {
	update(msg tea.Msg) (tea.Cmd, *transition, error)
	view() string
	bindings() []key.Binding

	// resume runs when the screen becomes the top of the stack, pause when
	// it stops being the top.
	resume() (tea.Cmd, error)
	pause() error
	onResult(req request, res result) error
}

type frame struct {
	screen screen
	req    request
}

type Model struct {
	keys   keyMap
	logger *log.Logger
	stack  []frame
	help   help.Model
	err    error

	// size is the last window size seen; zero until the first one arrives.
	size tea.WindowSizeMsg
}

// New builds the model with the list screen on top.
func New(store *storage.Store, cfg config.Config, logger *log.Logger) (Model, error) {
	if logger == nil {
		logger = logging.NewWriter(io.Discard, log.InfoLevel)
	}
	m := Model{
		keys:   newKeyMap(cfg.Keys),
		logger: logger,
		help:   help.New(),
	}
	root := newListScreen(store, m.keys)
	m.stack = []frame{{screen: root, req: requestRoot}}
	if _, err := root.resume(); err != nil {
		return m, err
	}
	return m, nil
}

func Run(store *storage.Store, cfg config.Config, logger *log.Logger) error {
	m, err := New(store, cfg, logger)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Err is the storage error that stopped the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) top() screen {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1].screen
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	top := m.top()
	if top == nil {
		return m, tea.Quit
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
		m.help.Width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if err := top.pause(); err != nil {
				return m.fail(err)
			}
			m.stack = nil
			return m, tea.Quit
		}
	}

	cmd, tr, err := top.update(msg)
	if err != nil {
		return m.fail(err)
	}
	if tr == nil {
		return m, cmd
	}
	next, trCmd, err := m.apply(tr)
	if err != nil {
		return next.fail(err)
	}
	return next, tea.Batch(cmd, trCmd)
}

// apply mirrors activity hand-off: the leaving screen pauses first, the
// parent then sees the result, and resumes last.
func (m Model) apply(tr *transition) (Model, tea.Cmd, error) {
	top := m.top()
	if err := top.pause(); err != nil {
		return m, nil, err
	}
	if tr.start != nil {
		m.logger.Debug("screen started", "request", tr.req, "depth", len(m.stack)+1)
		m.stack = append(m.stack, frame{screen: tr.start, req: tr.req})
		cmd, err := m.show(tr.start)
		return m, cmd, err
	}

	done := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.logger.Debug("screen finished", "request", done.req, "ok", tr.res.ok, "depth", len(m.stack))
	parent := m.top()
	if parent == nil {
		return m, tea.Quit, nil
	}
	if err := parent.onResult(done.req, tr.res); err != nil {
		return m, nil, err
	}
	cmd, err := m.show(parent)
	return m, cmd, err
}

// show resumes s as the new top and hands it the current window size, which
// it missed while another screen was on top.
func (m Model) show(s screen) (tea.Cmd, error) {
	cmd, err := s.resume()
	if err != nil || m.size.Width == 0 {
		return cmd, err
	}
	sizeCmd, _, err := s.update(m.size)
	return tea.Batch(cmd, sizeCmd), err
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.logger.Error("storage failure", "err", err)
	m.err = err
	m.stack = nil
	return m, tea.Quit
}

func (m Model) View() string {
	top := m.top()
	if top == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("doit"))
	b.WriteString("\n\n")
	b.WriteString(top.view())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(top.bindings()))
	b.WriteString("\n")
	return b.String()
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
