package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultLogName        = "doit.log"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "DOIT_CONFIG"
)

type Keymap struct {
	Quit   string `toml:"quit"`
	Add    string `toml:"add"`
	Open   string `toml:"open"`
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
	Select string `toml:"select"`
	Delete string `toml:"delete"`

	Press     string `toml:"press"`
	NextField string `toml:"next_field"`
	PrevField string `toml:"prev_field"`
	PickDate  string `toml:"pick_date"`
	Confirm   string `toml:"confirm"`
	CloseItem string `toml:"close_item"`
	Cancel    string `toml:"cancel"`
}

type Log struct {
	Path   string `toml:"path"`
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	DBPath string `toml:"db_path"`
	Log    Log    `toml:"log"`
	Keys   Keymap `toml:"keys"`
}

// ResolveConfigPath picks $DOIT_CONFIG, then the user config dir, then the
// working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "doit", DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads path, writing the defaults there first when the file
// does not exist. Relative paths inside the file are resolved against the
// file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return resolve(cfg, path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg = fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return resolve(cfg, path), nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	for name, v := range c.Keys.bindings() {
		if v == "" {
			return fmt.Errorf("key %q is unbound", name)
		}
	}
	// Edit-screen keys are matched before the text fields see them.
	for name, v := range c.Keys.editBindings() {
		if utf8.RuneCountInString(v) == 1 {
			return fmt.Errorf("key %q = %q would shadow typing; use a named or modified key", name, v)
		}
	}
	return nil
}

func (k Keymap) editBindings() map[string]string {
	return map[string]string{
		"press":      k.Press,
		"next_field": k.NextField,
		"prev_field": k.PrevField,
		"pick_date":  k.PickDate,
		"confirm":    k.Confirm,
		"close_item": k.CloseItem,
		"cancel":     k.Cancel,
	}
}

func (k Keymap) bindings() map[string]string {
	return map[string]string{
		"quit":       k.Quit,
		"add":        k.Add,
		"open":       k.Open,
		"up":         k.Up,
		"down":       k.Down,
		"left":       k.Left,
		"right":      k.Right,
		"select":     k.Select,
		"delete":     k.Delete,
		"press":      k.Press,
		"next_field": k.NextField,
		"prev_field": k.PrevField,
		"pick_date":  k.PickDate,
		"confirm":    k.Confirm,
		"close_item": k.CloseItem,
		"cancel":     k.Cancel,
	}
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func resolve(cfg Config, path string) Config {
	base := filepath.Dir(path)
	if !filepath.IsAbs(cfg.DBPath) && !strings.HasPrefix(cfg.DBPath, "file:") {
		cfg.DBPath = filepath.Join(base, cfg.DBPath)
	}
	if !filepath.IsAbs(cfg.Log.Path) {
		cfg.Log.Path = filepath.Join(base, cfg.Log.Path)
	}
	return cfg
}

func fillDefaults(cfg Config) Config {
	def := Default()
	if cfg.DBPath == "" {
		cfg.DBPath = def.DBPath
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = def.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	return cfg
}

func Default() Config {
	return Config{
		DBPath: DefaultDBName,
		Log: Log{
			Path:   DefaultLogName,
			Level:  "info",
			Format: "text",
		},
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Open:      "enter",
			Up:        "k",
			Down:      "j",
			Left:      "h",
			Right:     "l",
			Select:    " ",
			Delete:    "d",
			Press:     "enter",
			NextField: "tab",
			PrevField: "shift+tab",
			PickDate:  "ctrl+d",
			Confirm:   "ctrl+s",
			CloseItem: "ctrl+x",
			Cancel:    "esc",
		},
	}
}
