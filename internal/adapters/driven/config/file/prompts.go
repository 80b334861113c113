package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

const promptReadme = `# Theme prompts

theme_system.txt      system prompt, describes the JSON array the model returns
theme_extraction.txt  per-company request

theme_extraction.txt is a printf template with four %s verbs: company,
sector, industry, passages. A file with a different number of %s verbs is
ignored and the built-in prompt is used instead.

Delete a file to restore its default on the next run.
`

// PromptStore serves prompt templates from <dir>/<name>.txt. Missing files
// are seeded with the built-in defaults the first time a prompt is loaded,
// and a template whose %s verbs do not match its default falls back to the
// default.
type PromptStore struct {
	dir string

	seed sync.Once

	mu     sync.Mutex
	loaded map[string]string
}

// NewPromptStore uses ~/.stockthemes/prompts when dir is empty. Nothing is
// written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".stockthemes", "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Dir is the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Unknown names without a file are an
// error; every other failure degrades to the built-in default.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.writeDefaults)

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.loaded[name]; ok {
		return p, nil
	}

	def, known := driven.DefaultPrompts[name]
	data, err := os.ReadFile(s.path(name))
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("prompts: %s: %v, using default", name, err)
		}
		s.loaded[name] = def
		return def, nil
	}

	p := strings.TrimSpace(string(data))
	if known && verbs(p) != verbs(def) {
		logger.Warn("prompts: %s has %d %%s verbs, want %d; using default", name, verbs(p), verbs(def))
		p = def
	}
	s.loaded[name] = p
	return p, nil
}

// Reload drops cached templates so edits are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.loaded = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

// writeDefaults creates the directory with any missing default files.
// Failures are logged: Load still serves the defaults from memory.
func (s *PromptStore) writeDefaults() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		logger.Warn("prompts: create %s: %v", s.dir, err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range driven.DefaultPrompts {
		files[name+promptExt] = content + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err == nil {
			_, err = f.WriteString(content)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			logger.Warn("prompts: write %s: %v", path, err)
		}
	}
}

// verbs counts %s verbs, ignoring escaped percent signs.
func verbs(tmpl string) int {
	return strings.Count(strings.ReplaceAll(tmpl, "%%", ""), "%s")
}
