// Package env layers environment variables and .env files over another
// driven.ConfigStore. Variables win over the wrapped store; writes go to
// the wrapped store so `ailab settings set` still persists.
package env

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Variables maps dotted config keys to environment variable names.
// When several names are listed the first one set wins.
//
//nolint:gosec // G101: variable names, not credentials.
var Variables = map[string][]string{
	"completion.provider":    {"AILAB_COMPLETION_PROVIDER"},
	"completion.endpoint":    {"AZURE_OPENAI_ENDPOINT", "AILAB_COMPLETION_ENDPOINT"},
	"completion.api_key":     {"AZURE_OPENAI_API_KEY", "AILAB_COMPLETION_API_KEY"},
	"completion.deployment":  {"AZURE_OPENAI_DEPLOYMENT_NAME", "AILAB_COMPLETION_MODEL"},
	"completion.api_version": {"AZURE_OPENAI_API_VERSION"},

	"embedding.provider":    {"AILAB_EMBEDDING_PROVIDER"},
	"embedding.endpoint":    {"AZURE_OPENAI_EMBEDDING_ENDPOINT", "AILAB_EMBEDDING_ENDPOINT"},
	"embedding.api_key":     {"AZURE_OPENAI_EMBEDDING_API_KEY", "AILAB_EMBEDDING_API_KEY"},
	"embedding.deployment":  {"AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "AILAB_EMBEDDING_MODEL"},
	"embedding.api_version": {"AZURE_OPENAI_EMBEDDING_API_VERSION"},
	"embedding.dimensions":  {"AZURE_OPENAI_EMBEDDING_DIMENSIONS", "AILAB_EMBEDDING_DIMENSIONS"},

	"index.backend":     {"AILAB_INDEX_BACKEND"},
	"index.endpoint":    {"AZURE_SEARCH_ENDPOINT"},
	"index.api_key":     {"AZURE_SEARCH_API_KEY"},
	"index.name":        {"AZURE_SEARCH_INDEX_NAME", "AILAB_INDEX_NAME"},
	"index.api_version": {"AZURE_SEARCH_API_VERSION"},
	"index.path":        {"AILAB_INDEX_PATH"},
	"index.dsn":         {"AILAB_PGVECTOR_DSN", "DATABASE_URL"},

	"auth.tenant_id":     {"AZURE_TENANT_ID"},
	"auth.client_id":     {"AZURE_CLIENT_ID"},
	"auth.client_secret": {"AZURE_CLIENT_SECRET"},

	"rag.top_k":              {"AILAB_RAG_TOP_K"},
	"rag.max_tokens":         {"AILAB_RAG_MAX_TOKENS"},
	"rag.temperature":        {"AILAB_RAG_TEMPERATURE"},
	"rag.ingest_concurrency": {"AILAB_RAG_INGEST_CONCURRENCY"},

	"ratelimit.requests_per_second": {"AILAB_RATELIMIT_RPS"},
	"ratelimit.burst":               {"AILAB_RATELIMIT_BURST"},
}

// LookupFunc reads one environment variable.
type LookupFunc func(name string) (string, bool)

// Store resolves keys from the environment first, then from base.
type Store struct {
	base   driven.ConfigStore
	lookup LookupFunc
}

// NewStore layers the process environment and the given .env files over
// base. Missing .env files are skipped. Process variables win over .env
// values, and earlier files win over later ones.
func NewStore(base driven.ConfigStore, dotenvFiles ...string) (*Store, error) {
	fileVars := make(map[string]string)
	for i := len(dotenvFiles) - 1; i >= 0; i-- {
		vars, err := godotenv.Read(dotenvFiles[i])
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded %d variables from %s", len(vars), dotenvFiles[i])
		for k, v := range vars {
			fileVars[k] = v
		}
	}

	return NewStoreWithLookup(base, func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := fileVars[name]
		return v, ok
	}), nil
}

// NewStoreWithLookup uses lookup instead of the process environment.
func NewStoreWithLookup(base driven.ConfigStore, lookup LookupFunc) *Store {
	return &Store{base: base, lookup: lookup}
}

// Source returns the variable that currently overrides key, if any.
func (s *Store) Source(key string) (string, bool) {
	for _, name := range Variables[key] {
		if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
			return name, true
		}
	}
	return "", false
}

func (s *Store) fromEnv(key string) (string, bool) {
	name, ok := s.Source(key)
	if !ok {
		return "", false
	}
	v, _ := s.lookup(name)
	return strings.TrimSpace(v), true
}

// Get retrieves a configuration value by key. Environment values are strings.
func (s *Store) Get(key string) (any, bool) {
	if v, ok := s.fromEnv(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	if v, ok := s.fromEnv(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (s *Store) GetInt(key string) int {
	if v, ok := s.fromEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warn("ignoring non-integer %s=%q", key, v)
	}
	return s.base.GetInt(key)
}

// Set persists to base. An environment override still wins on reads.
func (s *Store) Set(key string, value any) error {
	if name, ok := s.Source(key); ok {
		logger.Warn("%s is set and overrides %s", name, key)
	}
	return s.base.Set(key, value)
}

// Path returns the base configuration file path.
func (s *Store) Path() string {
	return s.base.Path()
}

// Overrides lists the keys currently set from the environment, sorted.
func (s *Store) Overrides() []string {
	var keys []string
	for key := range Variables {
		if _, ok := s.Source(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
