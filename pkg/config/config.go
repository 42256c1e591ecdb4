// Package config merges the optional TOML file with command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/developertyrone/sortimages/pkg/organizer"
)

// Error is a configuration error. It is reported before anything on disk is
// touched.
type Error struct {
	// Path is the config file involved, if any.
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// CLIArgs is what the command line provided. The *Set fields record whether
// a flag was given explicitly so that --recursive=false can beat the file.
type CLIArgs struct {
	Directory string
	Primary   organizer.Criterion
	Secondary []organizer.Criterion

	ConfigFile string

	Recursive    bool
	RecursiveSet bool

	OnCollision    string
	OnCollisionSet bool

	Debug    bool
	DebugSet bool

	NoColor    bool
	NoColorSet bool

	DryRun bool
}

// FileConfig mirrors the TOML configuration file.
type FileConfig struct {
	Recursive   *bool    `toml:"recursive"`
	OnCollision string   `toml:"on_collision"`
	JunkFiles   []string `toml:"junk_files"`
	Debug       bool     `toml:"debug"`
	NoColor     bool     `toml:"no_color"`
}

// Effective is the validated configuration the sorter runs with.
type Effective struct {
	Directory string
	Spec      organizer.SortSpec
	Collision organizer.CollisionPolicy
	JunkFiles []string
	DryRun    bool
	Debug     bool
	NoColor   bool
}

// Load reads the TOML file at path.
func Load(path string) (FileConfig, error) {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return FileConfig{}, &Error{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return FileConfig{}, &Error{Path: path, Err: errors.Errorf("unknown keys %s", strings.Join(keys, ", "))}
	}
	return fc, nil
}

// Resolve loads cli.ConfigFile when set and merges it with cli. Precedence is
// explicit flag, then file, then built-in default.
func Resolve(cli CLIArgs) (Effective, error) {
	var fc FileConfig
	if cli.ConfigFile != "" {
		var err error
		if fc, err = Load(cli.ConfigFile); err != nil {
			return Effective{}, err
		}
	}
	return Merge(cli, fc)
}

// Merge validates and combines cli with fc.
func Merge(cli CLIArgs, fc FileConfig) (Effective, error) {
	dir, err := checkDirectory(cli.Directory)
	if err != nil {
		return Effective{}, err
	}

	recursive := false
	if cli.RecursiveSet {
		recursive = cli.Recursive
	} else if fc.Recursive != nil {
		recursive = *fc.Recursive
	}

	spec, err := organizer.NewSortSpec(cli.Primary, cli.Secondary, recursive)
	if err != nil {
		return Effective{}, &Error{Err: err}
	}

	policyName := fc.OnCollision
	if cli.OnCollisionSet {
		policyName = cli.OnCollision
	}
	policy, err := organizer.ParseCollisionPolicy(policyName)
	if err != nil {
		return Effective{}, &Error{Err: err}
	}

	junk := append([]string(nil), organizer.DefaultJunkFiles...)
	for _, name := range fc.JunkFiles {
		if name = strings.TrimSpace(name); name != "" {
			junk = append(junk, name)
		}
	}

	debug := fc.Debug
	if cli.DebugSet {
		debug = cli.Debug
	}
	noColor := fc.NoColor
	if cli.NoColorSet {
		noColor = cli.NoColor
	}

	return Effective{
		Directory: dir,
		Spec:      spec,
		Collision: policy,
		JunkFiles: junk,
		DryRun:    cli.DryRun,
		Debug:     debug,
		NoColor:   noColor,
	}, nil
}

// checkDirectory returns the absolute path of dir if it is an existing directory.
func checkDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(dir))
	if err != nil {
		return "", &Error{Err: err}
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return "", &Error{Err: errors.Errorf("%s is not a valid directory", abs)}
	}
	return abs, nil
}
