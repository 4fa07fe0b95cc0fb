package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wordforge/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordforge [request]",
		Short: "Language-learning flashcard agent",
		Long: `wordforge turns a natural-language request into vocabulary flashcards.

It samples words from per-language word lists, translates them with a
language model, and saves them as cards in an Anki deck via AnkiConnect
(or into an offline .apkg file).

Examples:
  wordforge "Get 10 random words in Spanish"
  wordforge "Get 10 easy words in Spanish, translate them to English, and create a deck called Spanish::Easy"
  wordforge --apkg-out spanish.apkg "Get 5 hard words in German, translate them to English, and save them as German::Hard"`,
		Args:    cobra.ExactArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordforge.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.DataDir, "data-dir", "d", flags.DataDir, "Directory holding per-language word lists")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Verbose logging")
	cmd.Flags().IntVar(&flags.MaxCycles, "max-cycles", flags.MaxCycles, "Maximum model/tool cycles per request")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout per model or store call")

	// Model flags
	cmd.Flags().StringVar(&flags.AgentProvider, "agent-provider", flags.AgentProvider, "Agent model provider (only openai supports tool calls)")
	cmd.Flags().StringVar(&flags.AgentModel, "agent-model", flags.AgentModel, "Agent model name")
	cmd.Flags().StringVar(&flags.TranslationProvider, "translation-provider", flags.TranslationProvider, "Translation model provider: openai or gemini")
	cmd.Flags().StringVar(&flags.TranslationModel, "translation-model", flags.TranslationModel, "Translation model name")

	// Deck store flags
	cmd.Flags().StringVar(&flags.StoreURL, "store-url", flags.StoreURL, "AnkiConnect URL")
	cmd.Flags().StringVar(&flags.PackageOut, "apkg-out", "", "Write cards to an .apkg file instead of the remote store")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("words.data_dir", cmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("agent.max_cycles", cmd.Flags().Lookup("max-cycles"))
	viper.BindPFlag("agent.provider", cmd.Flags().Lookup("agent-provider"))
	viper.BindPFlag("agent.model", cmd.Flags().Lookup("agent-model"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("translation-provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("translation-model"))
	viper.BindPFlag("store.url", cmd.Flags().Lookup("store-url"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// Load .env first so API keys are visible to the env lookups below
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordforge" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordforge")
	}

	// Environment variables
	bindEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnv maps bound viper keys onto WORDFORGE_* environment variables, so
// e.g. store.url is reachable as WORDFORGE_STORE_URL.
func bindEnv() {
	viper.SetEnvPrefix("WORDFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// ResolveFlags folds config-file and environment values into the flags.
// The pflag bindings keep precedence for flags set on the command line:
// flag > environment > config file > flag default.
func ResolveFlags(flags *Flags) {
	flags.DataDir = viper.GetString("words.data_dir")
	flags.MaxCycles = viper.GetInt("agent.max_cycles")
	flags.AgentProvider = viper.GetString("agent.provider")
	flags.AgentModel = viper.GetString("agent.model")
	flags.TranslationProvider = viper.GetString("translation.provider")
	flags.TranslationModel = viper.GetString("translation.model")
	flags.StoreURL = viper.GetString("store.url")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.api_key")
}
