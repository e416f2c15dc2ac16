package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name inside the config directory.
const ConfigFile = "config.toml"

// ConfigStore persists settings as TOML. Dotted keys map to tables, so
// "completion.endpoint" is written as endpoint under [completion].
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// DefaultDir returns ~/.ailab.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ailab"), nil
}

// NewConfigStore opens config.toml in configDir, creating the directory if
// needed. A missing file is an empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, ConfigFile)}
	values, err := readTOML(s.path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt reads TOML integers (int64), floats and numeric strings.
func (s *ConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

// Set writes the whole file before returning. On a write error the value
// is not kept.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := writeTOML(s.path, s.values); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

func readTOML(path string) (map[string]any, error) {
	values := make(map[string]any)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	flattenInto(values, "", tree)
	return values, nil
}

// writeTOML replaces path via a temp file so a crash never leaves a
// truncated config. The file holds API keys, hence 0600.
func writeTOML(path string, values map[string]any) error {
	data, err := toml.Marshal(unflatten(values))
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// flattenInto copies tree into dst with dotted keys.
func flattenInto(dst map[string]any, prefix string, tree map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flattenInto(dst, k, table)
			continue
		}
		dst[k] = v
	}
}

// unflatten turns dotted keys back into nested tables.
func unflatten(values map[string]any) map[string]any {
	root := make(map[string]any)
	for key, v := range values {
		table := root
		path := strings.Split(key, ".")
		for _, name := range path[:len(path)-1] {
			next, ok := table[name].(map[string]any)
			if !ok {
				next = make(map[string]any)
				table[name] = next
			}
			table = next
		}
		table[path[len(path)-1]] = v
	}
	return root
}
