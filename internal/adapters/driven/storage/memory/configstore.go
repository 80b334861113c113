package memory

import (
	"sync"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/config/confval"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings in a map. Save and Load do nothing.
type ConfigStore struct {
	confval.Values

	mu     sync.RWMutex
	values map[string]any
}

func NewConfigStore() *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	s.Lookup = s.Get
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set copies string slices so callers can reuse theirs.
func (s *ConfigStore) Set(key string, value any) error {
	if list, ok := value.([]string); ok {
		value = append([]string(nil), list...)
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Len is the number of stored keys.
func (s *ConfigStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
