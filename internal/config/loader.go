package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrFileNotFound indicates the configuration file doesn't exist.
var ErrFileNotFound = errors.New("config file not found")

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads TOML configuration files on top of Default.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a loader that reads from the OS file system.
func NewLoader() *Loader {
	return &Loader{fs: OSFS{}}
}

// NewLoaderWithFS creates a loader with a custom file system.
func NewLoaderWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Load returns Default overlaid with the file at path. An empty path
// returns Default unchanged.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := decode(path, bytes.NewReader(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader returns Default overlaid with the TOML read from r.
func (l *Loader) LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode("<reader>", r, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode parses TOML into cfg, rejecting keys that map to no setting.
func decode(source string, r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()

	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		perr.Err = errors.Join(ErrUnknownSetting, err)
		if len(strict.Errors) > 0 {
			perr.Line, perr.Column = strict.Errors[0].Position()
			perr.Message = fmt.Sprintf("unknown setting %v", strict.Errors[0].Key())
		}
		return perr
	}

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	}
	return perr
}
