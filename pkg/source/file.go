package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
)

// File reads <dir>/<id>.toml, falling back to <dir>/<id>.json.
type File struct {
	Dir string
}

// NewFile returns a File source rooted at dir.
func NewFile(dir string) (*File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "floor directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s is not a directory", dir)
	}
	return &File{Dir: dir}, nil
}

func (s *File) Floor(_ context.Context, id string) (*floorplan.Floor, error) {
	if err := errors.ValidateFloorID(id); err != nil {
		return nil, err
	}
	for _, ext := range []string{".toml", ".json"} {
		path := filepath.Join(s.Dir, id+ext)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		f, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if f.ID == "" {
			f.ID = id
		}
		return f, nil
	}
	return nil, notFound(id)
}

// Floors lists the ids of every layout file in the directory.
func (s *File) Floors(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".toml" && ext != ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *File) Close() error { return nil }

// ReadFile decodes a single floor layout, choosing the format by extension.
func ReadFile(path string) (*floorplan.Floor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	var f floorplan.Floor
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown layout format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse %s", path)
	}
	return &f, nil
}
