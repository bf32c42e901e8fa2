package road

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrRoadNotFound is returned when no file exists for a road name.
var ErrRoadNotFound = errors.New("road: not found")

const fileExt = ".yaml"

// Store keeps one YAML file per road under Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// FileName maps a road name to its file name: lower case, with runs of
// anything other than letters and digits collapsed to a single underscore.
func FileName(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimRight(b.String(), "_") + fileExt
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, FileName(name))
}

// Save validates r and writes it, replacing any earlier file for the name.
func (s *Store) Save(r *RoadData) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if FileName(r.Name) == fileExt {
		return fmt.Errorf("%w: name %q has no usable characters", ErrInvalidRoad, r.Name)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode road %q: %w", r.Name, err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create road dir %q: %w", s.Dir, err)
	}
	path := s.path(r.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write road %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write road %q: %w", path, err)
	}
	return nil
}

// Load reads the road saved under name.
func (s *Store) Load(name string) (*RoadData, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrRoadNotFound, name)
		}
		return nil, fmt.Errorf("read road %q: %w", path, err)
	}
	var r RoadData
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse road %q: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}
	return &r, nil
}

func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrRoadNotFound, name)
		}
		return err
	}
	return nil
}

// List returns the names of all stored roads, sorted. Files that fail to
// parse are skipped.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list roads in %q: %w", s.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			continue
		}
		var header struct {
			Name string `yaml:"name"`
		}
		if yaml.Unmarshal(data, &header) != nil || header.Name == "" {
			continue
		}
		names = append(names, header.Name)
	}
	sort.Strings(names)
	return names, nil
}
