package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change configuration",
	Long: `Show and change ailab configuration.

Values are stored in ~/.ailab/config.toml. Environment variables and a .env
file in the working directory override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a single setting",
	Long: `Persist a single setting to the config file.

Keys:
  ` + strings.Join(settingKeyList(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup",
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingKeyList() []string {
	// Keys is static, so a zero-value service is enough to list them.
	return (&services.SettingsService{}).Keys()
}

func settingsService() (driving.SettingsService, error) {
	r, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	return r.Settings(), nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Completion]")
	cmd.Printf("  Provider:    %s\n", settings.Completion.Provider.Description())
	cmd.Printf("  Endpoint:    %s\n", orUnset(settings.Completion.Endpoint))
	cmd.Printf("  Deployment:  %s\n", orUnset(settings.Completion.Deployment))
	cmd.Printf("  API version: %s\n", orUnset(settings.Completion.APIVersion))
	cmd.Printf("  API key:     %s\n", maskedOrUnset(settings.Completion.APIKey))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider:    %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Endpoint:    %s\n", orUnset(settings.Embedding.Endpoint))
	cmd.Printf("  Deployment:  %s\n", orUnset(settings.Embedding.Deployment))
	cmd.Printf("  API version: %s\n", orUnset(settings.Embedding.APIVersion))
	cmd.Printf("  API key:     %s\n", maskedOrUnset(settings.Embedding.APIKey))
	cmd.Printf("  Dimensions:  %d\n", settings.Embedding.Dimensions)
	cmd.Println()

	cmd.Println("[Vector Index]")
	cmd.Printf("  Backend:     %s\n", settings.Index.Backend.Description())
	cmd.Printf("  Name:        %s\n", orUnset(settings.Index.Name))
	switch settings.Index.Backend {
	case domain.IndexBackendAzureSearch:
		cmd.Printf("  Endpoint:    %s\n", orUnset(settings.Index.Endpoint))
		cmd.Printf("  API version: %s\n", orUnset(settings.Index.APIVersion))
		cmd.Printf("  API key:     %s\n", maskedOrUnset(settings.Index.APIKey))
	case domain.IndexBackendPgvector:
		cmd.Printf("  DSN:         %s\n", maskedOrUnset(settings.Index.DSN))
	case domain.IndexBackendChromem, domain.IndexBackendSQLite:
		cmd.Printf("  Path:        %s\n", orUnset(settings.Index.Path))
	}
	cmd.Println()

	if settings.Auth.IsConfigured() {
		cmd.Println("[Entra ID]")
		cmd.Printf("  Tenant:      %s\n", settings.Auth.TenantID)
		cmd.Printf("  Client:      %s\n", settings.Auth.ClientID)
		cmd.Printf("  Secret:      %s\n", maskAPIKey(settings.Auth.ClientSecret))
		cmd.Println()
	}

	cmd.Println("[RAG]")
	cmd.Printf("  Top K:       %d\n", settings.RAG.TopK)
	cmd.Printf("  Max tokens:  %d\n", settings.RAG.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", settings.RAG.Temperature)
	cmd.Printf("  Concurrency: %d\n", settings.RAG.IngestConcurrency)
	if settings.RateLimit.IsEnabled() {
		cmd.Printf("  Rate limit:  %.2f req/s (burst %d)\n", settings.RateLimit.RequestsPerSecond, settings.RateLimit.Burst)
	}
	cmd.Println()

	if err := svc.Validate(domain.ScopeRAG); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'ailab settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if services.IsSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	cmd.Println("ailab Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Completion Provider")
	cmd.Println("---------------------------")
	if err := configureService(cmd, reader, svc, "completion", domain.AllLLMProviders(), domain.DefaultLLMModels()); err != nil {
		return err
	}
	cmd.Print("Validating configuration... ")
	if err := svc.ValidateCompletionConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("completion configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	cmd.Println()

	cmd.Println("Step 2: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureService(cmd, reader, svc, "embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels()); err != nil {
		return err
	}
	cmd.Print("Validating configuration... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	cmd.Println()

	cmd.Println("Step 3: Vector Index")
	cmd.Println("--------------------")
	if err := configureIndex(cmd, reader, svc); err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := svc.Validate(domain.ScopeRAG); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// configureService prompts for one AI service and persists the answers
// under prefix ("completion" or "embedding").
func configureService(
	cmd *cobra.Command,
	reader *bufio.Reader,
	svc driving.SettingsService,
	prefix string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) error {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	values := [][2]string{{prefix + ".provider", provider.String()}}

	if provider.RequiresEndpoint() || provider == domain.AIProviderOllama {
		cmd.Print("Enter endpoint URL: ")
		if endpoint := readLine(reader); endpoint != "" {
			values = append(values, [2]string{prefix + ".endpoint", endpoint})
		} else if provider.RequiresEndpoint() {
			return fmt.Errorf("an endpoint is required for %s", provider.Description())
		}
	}

	model := defaults[provider]
	label := "model"
	if provider == domain.AIProviderAzure {
		label = "deployment"
	}
	if model != "" {
		cmd.Printf("Enter %s name [%s]: ", label, model)
	} else {
		cmd.Printf("Enter %s name: ", label)
	}
	if input := readLine(reader); input != "" {
		model = input
	}
	if model == "" {
		return fmt.Errorf("a %s name is required", label)
	}
	values = append(values, [2]string{prefix + ".deployment", model})

	if prefix == "embedding" {
		if dims, ok := domain.EmbeddingDimensions()[model]; ok {
			values = append(values, [2]string{prefix + ".dimensions", strconv.Itoa(dims)})
		}
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to keep current): ")
		if key := readPassword(cmd, reader); key != "" {
			values = append(values, [2]string{prefix + ".api_key", key})
		}
		cmd.Println()
	}

	for _, kv := range values {
		if err := svc.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv[0], err)
		}
	}
	cmd.Printf("%s configured: %s (%s)\n", strings.ToUpper(prefix[:1])+prefix[1:], provider.Description(), model)
	return nil
}

func configureIndex(cmd *cobra.Command, reader *bufio.Reader, svc driving.SettingsService) error {
	backends := domain.AllIndexBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	backend := backends[parseChoice(readLine(reader), len(backends), 1)-1]

	values := [][2]string{{"index.backend", backend.String()}}

	switch backend {
	case domain.IndexBackendAzureSearch:
		cmd.Print("Enter search endpoint URL: ")
		endpoint := readLine(reader)
		if endpoint == "" {
			return errors.New("an endpoint is required for Azure AI Search")
		}
		values = append(values, [2]string{"index.endpoint", endpoint})
		cmd.Print("Enter admin key (blank to keep current): ")
		if key := readPassword(cmd, reader); key != "" {
			values = append(values, [2]string{"index.api_key", key})
		}
		cmd.Println()
	case domain.IndexBackendPgvector:
		cmd.Print("Enter PostgreSQL DSN: ")
		dsn := readPassword(cmd, reader)
		cmd.Println()
		if dsn == "" {
			return errors.New("a DSN is required for pgvector")
		}
		values = append(values, [2]string{"index.dsn", dsn})
	case domain.IndexBackendChromem, domain.IndexBackendSQLite:
		cmd.Print("Enter storage path (blank for default): ")
		if path := readLine(reader); path != "" {
			values = append(values, [2]string{"index.path", path})
		}
	}

	cmd.Printf("Enter index name [%s]: ", domain.DefaultIndexName)
	if name := readLine(reader); name != "" {
		values = append(values, [2]string{"index.name", name})
	}

	for _, kv := range values {
		if err := svc.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv[0], err)
		}
	}
	cmd.Printf("Vector index configured: %s\n", backend.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when input is a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && reader.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		if password, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
