// Package app wires driven adapters into core services for the driving
// adapters. It is the only package that knows every concrete adapter.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ailab/internal/adapters/driven/ai"
	"github.com/custodia-labs/ailab/internal/adapters/driven/config/env"
	"github.com/custodia-labs/ailab/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ailab/internal/adapters/driven/config/validation"
	storagefile "github.com/custodia-labs/ailab/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/ailab/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/ailab/internal/adapters/driving/cli"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/core/services"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure Runtime implements the interface.
var _ cli.Runtime = (*Runtime)(nil)

// DotenvFile is read from the working directory and the config directory.
const DotenvFile = ".env"

// Runtime builds services on demand from the current settings. Each builder
// returns a release func that closes the adapters it created.
type Runtime struct {
	settings *services.SettingsService
	prompts  *file.PromptStore
	datasets *storagefile.DatasetStore
	loader   *storagefile.DocumentLoader
}

// New creates a Runtime rooted at configDir (~/.ailab when empty).
// Environment variables and .env files override config.toml.
func New(configDir string) (*Runtime, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		configDir = dir
	}

	base, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	store, err := env.NewStore(base, DotenvFile, filepath.Join(configDir, DotenvFile))
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return NewWithStore(configDir, store)
}

// NewWithStore creates a Runtime over an existing config store.
func NewWithStore(configDir string, store driven.ConfigStore) (*Runtime, error) {
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, err
	}

	settings := services.NewSettingsService(store, ai.NewConfigValidator())
	settings.SetValidator(validation.New())

	return &Runtime{
		settings: settings,
		prompts:  prompts,
		datasets: storagefile.NewDatasetStore(),
		loader:   storagefile.NewDocumentLoader(),
	}, nil
}

// Settings returns the settings service.
func (r *Runtime) Settings() driving.SettingsService {
	return r.settings
}

// Chat builds a chat service over the completion provider.
func (r *Runtime) Chat(ctx context.Context) (driving.ChatService, func(), error) {
	settings, svcs, err := r.create(ctx, domain.ScopeCompletion)
	if err != nil {
		return nil, nil, err
	}

	chat := services.NewChatService(svcs.Completion)
	chat.SetPromptStore(r.prompts)
	chat.SetTokenCounter(tokenizer.New(settings.Completion.Deployment))
	return chat, svcs.Close, nil
}

// RAG builds a RAG service with the adapters scope names. Commands that
// only retrieve leave out ScopeCompletion.
func (r *Runtime) RAG(ctx context.Context, scope domain.SettingsScope) (driving.RAGService, func(), error) {
	settings, svcs, err := r.create(ctx, scope)
	if err != nil {
		return nil, nil, err
	}

	rag := services.NewRAGService(svcs.Embedding, svcs.Index, svcs.Completion, services.RAGConfig{
		TopK:              settings.RAG.TopK,
		MaxTokens:         settings.RAG.MaxTokens,
		Temperature:       &settings.RAG.Temperature,
		IngestConcurrency: settings.RAG.IngestConcurrency,
	})
	rag.SetPromptStore(r.prompts)
	rag.SetTokenCounter(tokenizer.New(settings.Completion.Deployment))
	return rag, svcs.Close, nil
}

// Text builds a text-processing service over the completion provider.
func (r *Runtime) Text(ctx context.Context) (driving.TextService, func(), error) {
	_, svcs, err := r.create(ctx, domain.ScopeCompletion)
	if err != nil {
		return nil, nil, err
	}

	text := services.NewTextService(svcs.Completion)
	text.SetPromptStore(r.prompts)
	return text, svcs.Close, nil
}

// Analytics builds an analytics service. A zero scope gives a service that
// can only load and write datasets.
func (r *Runtime) Analytics(ctx context.Context, scope domain.SettingsScope) (driving.AnalyticsService, func(), error) {
	settings, svcs, err := r.create(ctx, scope)
	if err != nil {
		return nil, nil, err
	}

	analytics := services.NewAnalyticsService(r.datasets, svcs.Completion)
	analytics.SetPromptStore(r.prompts)
	analytics.SetTokenCounter(tokenizer.New(settings.Completion.Deployment))
	return analytics, svcs.Close, nil
}

// LoadDocuments reads a YAML or JSON document list, or one Markdown, HTML
// or text file as a single document.
func (r *Runtime) LoadDocuments(path string) ([]domain.Document, error) {
	return r.loader.Load(path)
}

// WatchPrompts reloads prompt templates on change until ctx is done.
// Failure to watch is logged; prompts still load on demand.
func (r *Runtime) WatchPrompts(ctx context.Context) {
	if err := r.prompts.Watch(ctx); err != nil {
		logger.Warn("Prompt hot reload disabled: %v", err)
	}
}

// PromptDir returns the directory prompt templates are read from.
func (r *Runtime) PromptDir() string {
	return r.prompts.Dir()
}

// create validates scope then builds its adapters.
func (r *Runtime) create(ctx context.Context, scope domain.SettingsScope) (*domain.AppSettings, *ai.Services, error) {
	if scope != 0 {
		if err := r.settings.Validate(scope); err != nil {
			return nil, nil, err
		}
	}

	settings, err := r.settings.Get()
	if err != nil {
		return nil, nil, err
	}

	svcs, err := ai.Create(ctx, settings, scope)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Created services for %s", describeScope(scope))
	return settings, svcs, nil
}

func describeScope(scope domain.SettingsScope) string {
	var names []string
	if scope.Has(domain.ScopeCompletion) {
		names = append(names, "completion")
	}
	if scope.Has(domain.ScopeEmbedding) {
		names = append(names, "embedding")
	}
	if scope.Has(domain.ScopeIndex) {
		names = append(names, "index")
	}
	if len(names) == 0 {
		return "no remote scope"
	}
	return strings.Join(names, ", ")
}
