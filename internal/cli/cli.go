// Package cli runs one-shot commands against the item store without the TUI.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"doit/internal/storage"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var errUsage = errors.New("usage")

type runner struct {
	store  *storage.Store
	stdout io.Writer
	stderr io.Writer
}

// Run dispatches args[0] and returns an exit code (0 ok, 1 error, 2 usage).
func Run(store *storage.Store, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		PrintHelp(stderr)
		return 2
	}
	r := runner{store: store, stdout: stdout, stderr: stderr}
	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(stdout)
		return 0
	case "ls":
		err = r.list(rest)
	case "add":
		err = r.add(rest)
	case "show":
		err = r.show(rest)
	case "close":
		err = r.setState(rest, storage.StateClosed)
	case "reopen":
		err = r.setState(rest, storage.StateOpen)
	case "rm":
		err = r.remove(rest)
	default:
		r.fail("unknown subcommand: " + cmd)
		fmt.Fprintln(stderr)
		PrintHelp(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		r.fail(err.Error())
		return 2
	default:
		r.fail(err.Error())
		return 1
	}
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `doit - a small to-do list

Usage:
  doit [-config path] [-db path] [subcommand [args]]

With no subcommand the interactive list opens.

Subcommands:
  ls [-all|-closed]                        List open items (or all / closed)
  add [-body text] [-due YYYY/MM/DD] title Add an open item, due today by default
  show <id>                                Print one item
  close <id>                               Mark an item closed
  reopen <id>                              Mark an item open again
  rm <id>...                               Delete items
  help                                     Show this help
`)
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

func (r runner) list(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	all := fs.Bool("all", false, "list every item")
	closed := fs.Bool("closed", false, "list closed items")
	if err := fs.Parse(args); err != nil {
		return usagef("ls [-all|-closed]")
	}
	if *all && *closed {
		return usagef("ls: -all and -closed are exclusive")
	}

	var items []storage.Item
	var err error
	switch {
	case *all:
		items, err = r.store.FetchAll()
	case *closed:
		items, err = r.store.FetchAllByState(storage.StateClosed)
	default:
		items, err = r.store.FetchAllByState(storage.StateOpen)
	}
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(r.stdout, mutedStyle.Render("No items."))
		return nil
	}
	for _, it := range items {
		fmt.Fprintln(r.stdout, formatRow(it))
	}
	return nil
}

func formatRow(it storage.Item) string {
	mark := pendingStyle.Render("•")
	if it.State == storage.StateClosed {
		mark = successStyle.Render("✔")
	}
	return fmt.Sprintf("%4d %s %s  %s", it.ID, mark, it.Title, mutedStyle.Render(it.Date))
}

func (r runner) add(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	body := fs.String("body", "", "item details")
	due := fs.String("due", "", "due date, YYYY/MM/DD")
	if err := fs.Parse(args); err != nil {
		return usagef("add [-body text] [-due YYYY/MM/DD] <title...>")
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return usagef("add [-body text] [-due YYYY/MM/DD] <title...>")
	}
	date := storage.Today()
	if *due != "" {
		t, err := time.Parse(storage.DateLayout, *due)
		if err != nil {
			return usagef("add: due date %q is not YYYY/MM/DD", *due)
		}
		date = t.Format(storage.DateLayout)
	}
	id, err := r.store.Create(title, *body, date, storage.StateOpen)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.stdout, successStyle.Render(fmt.Sprintf("✔ added #%d", id)))
	return nil
}

func (r runner) show(args []string) error {
	if len(args) != 1 {
		return usagef("show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	it, err := r.store.FetchByID(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.stdout, titleStyle.Render(fmt.Sprintf("#%d %s", it.ID, it.Title)))
	fmt.Fprintf(r.stdout, "Due   : %s\n", it.Date)
	fmt.Fprintf(r.stdout, "State : %s\n", it.State)
	if it.Body != "" {
		fmt.Fprintln(r.stdout)
		fmt.Fprintln(r.stdout, it.Body)
	}
	return nil
}

func (r runner) setState(args []string, state storage.State) error {
	if len(args) != 1 {
		return usagef("%s <id>", verb(state))
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ok, err := r.store.SetState(id, state)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("item %d: %w", id, storage.ErrNotFound)
	}
	fmt.Fprintln(r.stdout, successStyle.Render(fmt.Sprintf("✔ %s #%d", pastTense(state), id)))
	return nil
}

func (r runner) remove(args []string) error {
	if len(args) == 0 {
		return usagef("rm <id>...")
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if _, err := r.store.Delete(ids...); err != nil {
		return err
	}
	fmt.Fprintln(r.stdout, successStyle.Render(fmt.Sprintf("✔ removed %d item(s)", len(ids))))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("not an item id: %s", s)
	}
	return id, nil
}

func verb(state storage.State) string {
	if state == storage.StateClosed {
		return "close"
	}
	return "reopen"
}

func pastTense(state storage.State) string {
	if state == storage.StateClosed {
		return "closed"
	}
	return "reopened"
}

func (r runner) fail(msg string) {
	fmt.Fprintln(r.stderr, errorStyle.Render("✖ "+msg))
}
