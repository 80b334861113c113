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

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

var errNoSettings = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure pipeline, provider, storage and scheduler settings.

Settings live in ~/.stockthemes/config.toml. API keys may instead come from
the environment (OPENAI_API_KEY, MOONSHOT_API_KEY, ANTHROPIC_API_KEY,
GEMINI_API_KEY, PATENTSVIEW_API_KEY) or a .env file.`,
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
	Short: "Set a single setting",
	Long: `Set one dotted setting key. The result is validated before it is saved.

Durations use Go syntax (90s, 24h) and lists are comma separated.
Run 'stockthemes settings keys' for every accepted key.`,
	Example: `  stockthemes settings set pipeline.max_themes 15
  stockthemes settings set pipeline.disabled_strategies patent,social
  stockthemes settings set scheduler.theme_refresh.schedule "0 4 * * 1"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings and ping configured AI providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Choose the embedding provider",
	Long:  `Pick the embedding provider used by semantic filtering and the semantic strategy.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return configureProvider(cmd, embeddingRole())
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM provider",
	Long:  `Pick the language model used by the generative strategy.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return configureProvider(cmd, llmRole())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsKeysCmd,
		settingsValidateCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// row is one "name: value" line of the settings report.
type row struct{ name, value string }

func printSection(cmd *cobra.Command, title string, rows ...row) {
	cmd.Printf("[%s]\n", title)
	for _, r := range rows {
		cmd.Printf("  %s: %s\n", r.name, r.value)
	}
	cmd.Println()
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	p := s.Pipeline
	pipeline := []row{
		{"Chunk size", fmt.Sprintf("%d words", p.MaxWords)},
		{"Similarity threshold", fmt.Sprintf("%.2f", p.SimilarityThreshold)},
		{"Max themes", strconv.Itoa(p.MaxThemes)},
		{"Generative gate", fmt.Sprintf("market cap >= %.0f", p.GenerativeMarketCapGate)},
		{"Generative budget", fmt.Sprintf("%d chunks, %d tokens", p.GenerativeMaxChunks, p.GenerativeTokenBudget)},
		{"Strategy timeout", p.StrategyTimeout.String()},
		{"Post-processors", strings.Join(p.Processors, ", ")},
	}
	if len(p.DisabledStrategies) > 0 {
		pipeline = append(pipeline, row{"Disabled strategies", joinSources(p.DisabledStrategies)})
	}
	printSection(cmd, "Pipeline", pipeline...)

	e := s.Embedding
	printSection(cmd, "Embedding", providerRows(e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())...)
	l := s.LLM
	printSection(cmd, "LLM", providerRows(l.Provider, l.Model, l.BaseURL, l.APIKey, l.IsConfigured())...)

	printSection(cmd, "Providers",
		row{"SEC email", orNotSet(s.Providers.SECEmail)},
		row{"PatentsView API key", secret(s.Providers.PatentsViewAPIKey)},
		row{"HTTP timeout", s.Providers.HTTPTimeout.String()},
	)

	storage := []row{{"Backend", string(s.Storage.Backend)}}
	if s.Storage.Backend == domain.StoragePostgres {
		storage = append(storage, row{"DSN", maskAPIKey(s.Storage.PostgresDSN)})
	} else {
		storage = append(storage, row{"Data dir", orDefault(s.Storage.DataDir)})
	}
	cache := "disabled"
	if s.Cache.Enabled {
		cache = "enabled, " + orDefault(s.Cache.Dir)
	}
	printSection(cmd, "Storage", append(storage, row{"Response cache", cache})...)

	printSection(cmd, "Batch",
		row{"Concurrency", strconv.Itoa(s.Batch.Concurrency)},
		row{"Max failures", strconv.Itoa(s.Batch.MaxFailures)},
	)

	sched := []row{{"Enabled", strconv.FormatBool(s.Scheduler.Enabled)}}
	for _, id := range []string{domain.TaskIDSocialCollect, domain.TaskIDThemeRefresh} {
		tc := s.Scheduler.GetTaskConfig(id)
		sched = append(sched, row{id, fmt.Sprintf("%q (enabled: %t)", tc.Schedule, tc.Enabled)})
	}
	printSection(cmd, "Scheduler", sched...)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'stockthemes settings set' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func providerRows(provider domain.AIProvider, model, baseURL, apiKey string, configured bool) []row {
	if provider == "" {
		return []row{{"Provider", "(not set)"}}
	}
	rows := []row{{"Provider", provider.Description()}, {"Model", model}}
	if provider.IsLocal() {
		rows = append(rows, row{"Base URL", baseURL})
	}
	if provider.RequiresAPIKey() {
		rows = append(rows, row{"API Key", secret(apiKey)})
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	return append(rows, row{"Status", status})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if strings.Contains(key, "api_key") || strings.Contains(key, "dsn") {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	lister, ok := settingsService.(interface{ Keys() []string })
	if !ok {
		return errNoSettings
	}
	for _, k := range lister.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Println("Settings: OK")

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	checks := []struct {
		label      string
		configured bool
		disables   string
		ping       func() error
	}{
		{"Embedding provider", s.Embedding.IsConfigured(), "semantic strategy", settingsService.ValidateEmbeddingConfig},
		{"LLM provider", s.LLM.IsConfigured(), "generative strategy", settingsService.ValidateLLMConfig},
	}

	var failed error
	for _, c := range checks {
		if !c.configured {
			cmd.Printf("%s: not configured, %s disabled\n", c.label, c.disables)
			continue
		}
		cmd.Printf("%s... ", c.label)
		if err := c.ping(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			failed = errors.Join(failed, err)
			continue
		}
		cmd.Println("OK")
	}
	return failed
}

// providerRole is what differs between picking an embedding provider and
// picking an LLM provider.
type providerRole struct {
	label     string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	save      func(domain.AIProvider, string, string) error
	ping      func() error
}

func embeddingRole() providerRole {
	return providerRole{
		label:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		save:      settingsService.SetEmbeddingProvider,
		ping:      settingsService.ValidateEmbeddingConfig,
	}
}

func llmRole() providerRole {
	return providerRole{
		label:     "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		save:      settingsService.SetLLMProvider,
		ping:      settingsService.ValidateLLMConfig,
	}
}

// configureProvider walks the user through provider, model and key, then
// saves and pings the result.
func configureProvider(cmd *cobra.Command, role providerRole) error {
	in := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Select %s Provider\n", role.label)
	for i, p := range role.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := role.providers[parseChoice(readLine(in), len(role.providers), 1)-1]

	model := role.models[provider]
	cmd.Printf("Enter model name [%s]: ", model)
	if m := readLine(in); m != "" {
		model = m
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, in)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := role.save(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", role.label, err)
	}

	cmd.Print("Validating configuration... ")
	if err := role.ping(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", role.label, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n\n", role.label, provider.Description(), model)
	return nil
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// readSecret reads without echo when input is a terminal.
func readSecret(cmd *cobra.Command, r *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if b, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return readLine(r)
}

// parseChoice returns the 1-based menu choice in input, or def when input
// is not a number in [1, n].
func parseChoice(input string, n, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return def
	}
	return v
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func secret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return maskAPIKey(s)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
