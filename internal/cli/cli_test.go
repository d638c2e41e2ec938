package cli_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doit/internal/cli"
	"doit/internal/storage"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "todo.db"), log.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func run(s *storage.Store, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := cli.Run(s, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestAddAndList(t *testing.T) {
	s := newStore(t)

	code, out, _ := run(s, "add", "-body", "semi-skimmed", "-due", "2024/03/05", "buy", "milk")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "added #1")

	it, err := s.FetchByID(1)
	require.NoError(t, err)
	assert.Equal(t, storage.Item{ID: 1, Title: "buy milk", Body: "semi-skimmed", Date: "2024/03/05", State: storage.StateOpen}, it)

	code, out, _ = run(s, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "2024/03/05")
}

func TestAddDefaultsDueToToday(t *testing.T) {
	s := newStore(t)

	code, _, _ := run(s, "add", "water plants")
	require.Equal(t, 0, code)

	it, err := s.FetchByID(1)
	require.NoError(t, err)
	assert.Equal(t, storage.Today(), it.Date)
}

func TestCloseHidesFromDefaultList(t *testing.T) {
	s := newStore(t)
	open, err := s.Create("open", "", "2024/01/01", storage.StateOpen)
	require.NoError(t, err)
	done, err := s.Create("done", "", "2024/01/01", storage.StateOpen)
	require.NoError(t, err)

	code, _, _ := run(s, "close", "2")
	require.Equal(t, 0, code)

	_, out, _ := run(s, "ls")
	assert.Contains(t, out, "open")
	assert.NotContains(t, out, "done")

	_, out, _ = run(s, "ls", "-closed")
	assert.Contains(t, out, "done")

	_, out, _ = run(s, "ls", "-all")
	assert.Contains(t, out, "open")
	assert.Contains(t, out, "done")

	code, _, _ = run(s, "reopen", "2")
	require.Equal(t, 0, code)
	got, err := s.FetchByID(done)
	require.NoError(t, err)
	assert.Equal(t, storage.StateOpen, got.State)

	got, err = s.FetchByID(open)
	require.NoError(t, err)
	assert.Equal(t, storage.StateOpen, got.State)
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(title, "", "2024/01/01", storage.StateOpen)
		require.NoError(t, err)
	}

	code, out, _ := run(s, "rm", "1", "3")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "removed 2")

	all, err := s.FetchAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].Title)
}

func TestShow(t *testing.T) {
	s := newStore(t)
	_, err := s.Create("dentist", "call first", "2024/06/01", storage.StateOpen)
	require.NoError(t, err)

	code, out, _ := run(s, "show", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "#1 dentist")
	assert.Contains(t, out, "2024/06/01")
	assert.Contains(t, out, "call first")
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"help", []string{"help"}, 0},
		{"unknown", []string{"frobnicate"}, 2},
		{"add without title", []string{"add"}, 2},
		{"add bad due", []string{"add", "-due", "tomorrow", "x"}, 2},
		{"ls exclusive flags", []string{"ls", "-all", "-closed"}, 2},
		{"show bad id", []string{"show", "abc"}, 2},
		{"show missing", []string{"show", "9"}, 1},
		{"close missing", []string{"close", "9"}, 1},
		{"rm without ids", []string{"rm"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			code, _, _ := run(s, tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestEmptyList(t *testing.T) {
	s := newStore(t)
	code, out, _ := run(s, "ls")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No items.")
}
