// Package cli implements the ailab command line with cobra.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// errRuntimeNotConfigured is returned when a command runs before SetRuntime.
var errRuntimeNotConfigured = errors.New("runtime not configured")

// Runtime builds services on demand. Each builder validates the settings its
// service needs and returns a *domain.ConfigurationError before any remote
// call when something is missing. The returned func releases resources.
type Runtime interface {
	// Settings returns the settings service. It never fails.
	Settings() driving.SettingsService

	// Chat builds the chat service. Needs completion settings.
	Chat(ctx context.Context) (driving.ChatService, func(), error)

	// RAG builds the RAG service for scope. ScopeEmbedding|ScopeIndex is
	// enough for ensure, ingest and search; queries need ScopeRAG.
	RAG(ctx context.Context, scope domain.SettingsScope) (driving.RAGService, func(), error)

	// Text builds the text service. Needs completion settings.
	Text(ctx context.Context) (driving.TextService, func(), error)

	// Analytics builds the analytics service. Loading and sample generation
	// work without completion settings; asking does not.
	Analytics(ctx context.Context, scope domain.SettingsScope) (driving.AnalyticsService, func(), error)

	// LoadDocuments reads a document file (.yaml, .json, .md, .txt, .html).
	LoadDocuments(path string) ([]domain.Document, error)

	// WatchPrompts reloads prompt templates when they change on disk,
	// until ctx is cancelled. Long-running commands call it.
	WatchPrompts(ctx context.Context)
}

// RuntimeFactory builds the runtime for a config directory.
// An empty directory selects the default.
type RuntimeFactory func(configDir string) (Runtime, error)

var (
	rt        Runtime
	rtFactory RuntimeFactory
	configDir string
)

// SetRuntime sets the runtime used by every command.
func SetRuntime(r Runtime) {
	rt = r
}

// SetRuntimeFactory defers wiring until a command first needs a service,
// so --config-dir is honoured and commands like version never touch disk.
func SetRuntimeFactory(f RuntimeFactory) {
	rtFactory = f
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "ailab",
	Short: "Retrieval-augmented generation over hosted AI services",
	Long: `ailab answers questions from a small document knowledge base.

Documents are embedded, stored in a vector index and retrieved as context
for a completion model. Chat, text analysis and dataset questions use the
completion model directly.

Configuration is read from ~/.ailab/config.toml, a .env file in the working
directory or the config directory, and the environment. Later sources win.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose") //nolint:errcheck // flag is always registered
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log pipeline steps to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ailab)")
}

// Execute runs the root command. Command output goes to stdout, logs to stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func loadRuntime() (Runtime, error) {
	if rt != nil {
		return rt, nil
	}
	if rtFactory == nil {
		return nil, errRuntimeNotConfigured
	}
	r, err := rtFactory(configDir)
	if err != nil {
		return nil, err
	}
	rt = r
	return rt, nil
}
