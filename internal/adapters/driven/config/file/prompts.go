package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
	"github.com/custodia-labs/ailab/internal/prompts"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// PromptStore serves prompt templates from <dir>/<name>.txt, seeding the
// directory with the built-in templates on first use. An override that is
// empty or changes the number of %s placeholders is ignored in favour of
// the built-in text.
type PromptStore struct {
	dir      string
	builtins map[string]string

	seedOnce sync.Once
	seedErr  error

	mu       sync.RWMutex
	resolved map[string]string
}

// NewPromptStore does no I/O. An empty dir means ~/.ailab/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, "prompts")
	}
	return &PromptStore{
		dir:      dir,
		builtins: prompts.Defaults(),
		resolved: make(map[string]string),
	}, nil
}

// Load returns the template for name. The first call seeds the directory.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	s.mu.RLock()
	text, ok := s.resolved[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if prev, ok := s.resolved[name]; ok {
		text = prev
	} else {
		s.resolved[name] = text
	}
	s.mu.Unlock()
	return text, nil
}

// resolve picks the override for name when usable, else the built-in.
func (s *PromptStore) resolve(name string) (string, error) {
	builtin, known := s.builtins[name]

	override, err := s.readOverride(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		if s.seedErr == nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Using built-in %s prompt: %v", name, err)
		}
		return builtin, nil
	case override == "" && known:
		return builtin, nil
	case override == "":
		return "", fmt.Errorf("load prompt %q: empty file", name)
	}

	if known && placeholders(override) != placeholders(builtin) {
		logger.Warn("Ignoring %s%s: want %d %%s placeholders, found %d",
			name, promptExt, placeholders(builtin), placeholders(override))
		return builtin, nil
	}
	return override, nil
}

func (s *PromptStore) readOverride(name string) (string, error) {
	if s.seedErr != nil {
		return "", s.seedErr
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func placeholders(template string) int {
	return strings.Count(strings.ReplaceAll(template, "%%", ""), "%s")
}

// Reload forgets every resolved template.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.resolved)
	s.mu.Unlock()
}

// Dir returns the directory templates are read from.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Watch calls Reload whenever a template file changes, until ctx is done.
// The tui, serve and mcp commands use it so edits apply without a restart.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		return s.seedErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	go s.watchLoop(ctx, w)
	return nil
}

func (s *PromptStore) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if isPromptChange(ev) {
				logger.Debug("Prompt file changed: %s", filepath.Base(ev.Name))
				s.Reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

func isPromptChange(ev fsnotify.Event) bool {
	return filepath.Ext(ev.Name) == promptExt &&
		ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// seed writes any missing built-in template and the README. Files that
// already exist are user edits and stay untouched.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	names := slices.Sorted(maps.Keys(s.builtins))
	for _, name := range names {
		if err := writeIfMissing(filepath.Join(s.dir, name+promptExt), s.builtins[name]); err != nil {
			s.seedErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.dir, "README.md"), readme(names)); err != nil {
		s.seedErr = err
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readme(names []string) string {
	var b strings.Builder
	b.WriteString("# ailab prompts\n\n")
	b.WriteString("The templates ailab sends to the language model. Edit a file to change\n")
	b.WriteString("its behaviour; delete it to get the built-in version back on the next run.\n")
	b.WriteString("`ailab tui`, `ailab serve` and `ailab mcp serve` pick up edits immediately.\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s%s`\n", name, promptExt)
	}
	b.WriteString("\nTemplates containing `%s` are filled with fmt. Keep the same number of\n")
	b.WriteString("`%s` in the same order (rag_user takes the context, then the question).\n")
	b.WriteString("A file with a different count is ignored and a warning is logged.\n")
	return b.String()
}
