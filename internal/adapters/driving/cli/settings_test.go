package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	for key, want := range map[string]string{
		"":                                   "****",
		"abc123":                             "****",
		"12345678":                           "****",
		"sk-1234567890abcdef":                "sk-1...cdef",
		"sk-proj-1234567890abcdefghijklmnop": "sk-p...mnop",
	} {
		assert.Equal(t, want, maskAPIKey(key), "key %q", key)
	}
	assert.Equal(t, "(not set)", maskedOrUnset(""))
}

func TestParseChoice(t *testing.T) {
	// Five options, default 2. Anything outside 1..5 falls back.
	for input, want := range map[string]int{
		"":    2,
		"1":   1,
		"3":   3,
		"5":   5,
		"0":   2,
		"6":   2,
		"-1":  2,
		"abc": 2,
		"   ": 2,
	} {
		assert.Equal(t, want, parseChoice(input, 5, 2), "input %q", input)
	}
}

func TestSettingsShow_MasksSecrets(t *testing.T) {
	fake := newFakeRuntime()
	fake.settings.settings = domain.DefaultAppSettings()
	fake.settings.settings.Completion.Endpoint = "https://example.openai.azure.com"
	fake.settings.settings.Completion.APIKey = "sk-1234567890abcdef"
	fake.settings.settings.Index.APIKey = "short"
	withRuntime(t, fake)

	out, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "[Completion]")
	assert.Contains(t, out, "https://example.openai.azure.com")
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.NotContains(t, out, "short")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_WarnsOnInvalidConfig(t *testing.T) {
	fake := newFakeRuntime()
	fake.settings.settings = domain.DefaultAppSettings()
	fake.settings.validateErr = domain.NewConfigurationError("", "completion.endpoint")
	withRuntime(t, fake)

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: configuration error: missing or invalid completion.endpoint")
	assert.Contains(t, out, "(not set)")
}

func TestSettingsSet(t *testing.T) {
	fake := newFakeRuntime()
	withRuntime(t, fake)

	out, err := execute(t, "", "settings", "set", "index.name", "my-index")

	require.NoError(t, err)
	assert.Equal(t, "my-index", fake.settings.values["index.name"])
	assert.Contains(t, out, "Set index.name = my-index")
}

func TestSettingsSet_MasksSecretEcho(t *testing.T) {
	fake := newFakeRuntime()
	withRuntime(t, fake)

	out, err := execute(t, "", "settings", "set", "completion.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890abcdef", fake.settings.values["completion.api_key"])
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
}

func TestSettingsSet_Error(t *testing.T) {
	fake := newFakeRuntime()
	fake.settings.setErr = errors.New("unknown setting")
	withRuntime(t, fake)

	_, err := execute(t, "", "settings", "set", "nope", "x")

	assert.ErrorContains(t, err, "failed to set nope: unknown setting")
}

func TestSettingsSetCmd_ListsKeys(t *testing.T) {
	assert.Contains(t, settingsSetCmd.Long, "completion.endpoint")
	assert.Contains(t, settingsSetCmd.Long, "rag.top_k")
}

func TestSettingsWizard_LocalSetup(t *testing.T) {
	fake := newFakeRuntime()
	withRuntime(t, fake)

	// ollama completion, ollama embeddings, in-memory index, all defaults.
	out, err := execute(t, "4\n\n\n3\n\n\n5\n\n", "settings", "wizard")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"completion.provider":   "ollama",
		"completion.deployment": "llama3.2",
		"embedding.provider":    "ollama",
		"embedding.deployment":  "nomic-embed-text",
		"embedding.dimensions":  "768",
		"index.backend":         "memory",
	}, fake.settings.values)
	assert.Contains(t, out, "All settings are valid and saved.")
}

func TestSettingsWizard_AzureNeedsEndpoint(t *testing.T) {
	fake := newFakeRuntime()
	withRuntime(t, fake)

	_, err := execute(t, "1\n\n", "settings", "wizard")

	assert.ErrorContains(t, err, "an endpoint is required")
	assert.Empty(t, fake.settings.values)
}
