package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the complete service configuration.
type Config struct {
	Server   Server   `yaml:"server" json:"server"`
	Database Database `yaml:"database" json:"database"`
	Logo     Logo     `yaml:"logo" json:"logo"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string `yaml:"addr" json:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Database selects the attendee storage.
type Database struct {
	// Adapter is a database adapter name, see database.Init.
	Adapter    string `yaml:"adapter" json:"adapter"`
	Collection string `yaml:"collection" json:"collection"`

	// Path is the SQLite file, required for the sqlite adapter.
	Path  string `yaml:"path" json:"path,omitempty"`
	Cache bool   `yaml:"cache" json:"cache"`
}

// Logo configures the dot-matrix logo.
type Logo struct {
	Text       string   `yaml:"text" json:"text"`
	Background string   `yaml:"background" json:"background"`
	Colors     []string `yaml:"colors" json:"colors,omitempty"`
	Zoom       int      `yaml:"zoom" json:"zoom"`
	Ratio      float64  `yaml:"ratio" json:"ratio"`
	Animation  string   `yaml:"animation" json:"animation,omitempty"`
	Interval   string   `yaml:"interval" json:"interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            "localhost:3011",
			ShutdownTimeout: "10s",
		},
		Database: Database{
			Adapter:    "memory",
			Collection: "attendees",
		},
		Logo: Logo{
			Text:       "CYGNI TECH SUMMIT\n2020_",
			Background: "white",
			Colors:     []string{"black"},
			Zoom:       10,
			Animation:  "running-point:#09f",
			Interval:   "150ms",
		},
	}
}

// ShutdownTimeout returns the parsed server shutdown timeout.
func (c Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Interval returns the parsed animation interval.
func (c Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.Logo.Interval)
	if err != nil || d <= 0 {
		return 150 * time.Millisecond
	}
	return d
}

// Error is a configuration problem, positioned when it comes from a file.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Path, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Load reads the YAML file at path over the defaults. An empty path returns
// Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes YAML config data over the defaults. filename is only used in
// error positions.
func Parse(filename string, data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := checkFile(filename, data); err != nil {
		return cfg, err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// checkFile validates the raw file against the schema so that errors point
// into the file.
func checkFile(filename string, data []byte) error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	v := ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return convert(err)
	}
	return convert(def.Unify(v).Validate())
}

// Validate checks the complete configuration, defaults included.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	v := ctx.CompileBytes(raw, cue.Filename("config"))
	if err := convert(def.Unify(v).Validate(cue.Concrete(true))); err != nil {
		return err
	}

	var errs []error
	if (c.Database.Adapter == "sqlite" || c.Database.Adapter == "DatabaseAdapterSQLite") && c.Database.Path == "" {
		errs = append(errs, &Error{Path: "database.path", Message: "required for the sqlite adapter"})
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, &Error{Path: "server.shutdown_timeout", Message: err.Error()})
	}
	if d, err := time.ParseDuration(c.Logo.Interval); err != nil {
		errs = append(errs, &Error{Path: "logo.interval", Message: err.Error()})
	} else if d <= 0 {
		errs = append(errs, &Error{Path: "logo.interval", Message: "must be positive"})
	}
	return errors.Join(errs...)
}

// convert turns CUE errors into *Error values joined together.
func convert(err error) error {
	if err == nil {
		return nil
	}
	var errs []error
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ce := &Error{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if pos := e.Position(); pos.IsValid() && pos.Filename() != "schema.cue" {
			ce.Pos = pos
		} else {
			for _, ip := range e.InputPositions() {
				if ip.IsValid() && ip.Filename() != "schema.cue" {
					ce.Pos = ip
					break
				}
			}
		}
		errs = append(errs, ce)
	}
	return errors.Join(errs...)
}
