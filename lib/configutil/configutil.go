// Package configutil reads the menufetcher configuration files (halls,
// highlight rules, telemetry) together with their machine local overrides.
package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// Merger is implemented by configuration types whose local override cannot be
// merged field by field, ex. keyed lists where entries are matched by id.
// MergeLocal receives the decoded override, a value of the same type.
type Merger interface {
	MergeLocal(override any) error
}

// decode reads yaml for .yaml/.yml files and json5 for everything else.
func decode(path string, data []byte, out any) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json5.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LocalPath is the override next to path, "halls.json5" -> "halls.local.json5".
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// readFile decodes path into out, found is false when the file does not exist
// or is empty.
func readFile(path string, out any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	return true, decode(path, data, out)
}

// ReadConfig decodes the configuration at path and merges LocalPath(path) over
// it when present. Overrides go through T's Merger implementation if it has one,
// otherwise mergo replaces every non-zero field. os.ErrNotExist is returned when
// neither file exists.
func ReadConfig[T any](path string) (T, error) {
	var out T
	found, err := readFile(path, &out)
	if err != nil {
		return out, err
	}

	localPath := LocalPath(path)
	var override T
	foundLocal, err := readFile(localPath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		if m, ok := any(&out).(Merger); ok {
			err = m.MergeLocal(override)
		} else {
			err = mergo.Merge(&out, override, mergo.WithOverride)
		}
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", localPath, err)
		}
		slog.Info("applied local config overrides", "config", path, "local", localPath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for name in the working directory and then in each of
// its parents, the first one found is read with ReadConfig.
func ReadRecursively[T any](name string) (T, error) {
	var zero T
	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}
	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return zero, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
