package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordforge/internal/agent"
	"wordforge/internal/anki"
	"wordforge/internal/cli"
	"wordforge/internal/llm"
	"wordforge/internal/translation"
	"wordforge/internal/words"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Fold config-file and environment values into the flags
	cli.ResolveFlags(flags)

	logger, err := newLogger(flags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// A missing word-list directory is a configuration error, not a
	// runtime tool error
	if _, err := os.Stat(flags.DataDir); err != nil {
		return fmt.Errorf("word list directory %q not found (use --data-dir): %w", flags.DataDir, err)
	}

	agentClient, err := llm.NewClient(&llm.Config{
		Provider:  flags.AgentProvider,
		Model:     flags.AgentModel,
		Timeout:   flags.Timeout,
		OpenAIKey: cli.GetOpenAIKey(),
		GeminiKey: cli.GetGeminiKey(),
	})
	if err != nil {
		return fmt.Errorf("failed to create agent model client: %w", err)
	}

	translationClient, err := llm.NewClient(&llm.Config{
		Provider:  flags.TranslationProvider,
		Model:     flags.TranslationModel,
		Timeout:   flags.Timeout,
		OpenAIKey: cli.GetOpenAIKey(),
		GeminiKey: cli.GetGeminiKey(),
	})
	if err != nil {
		return fmt.Errorf("failed to create translation model client: %w", err)
	}

	// Choose the deck store: remote AnkiConnect by default, offline
	// package file when requested
	var store anki.DeckStore
	var pkg *anki.PackageStore
	if flags.PackageOut != "" {
		pkg = anki.NewPackageStore(flags.PackageOut)
		store = pkg
	} else {
		store = anki.NewClient(flags.StoreURL, flags.Timeout)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sampler := words.NewSampler(words.NewCatalogLoader(flags.DataDir), rng)
	translator := translation.NewTranslator(translationClient)
	builder := anki.NewBuilder(store, logger)

	registry := agent.NewRegistry()
	if err := agent.RegisterDefaultTools(registry, sampler, translator, builder); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	orchestrator := agent.New(agentClient, registry,
		agent.WithMaxCycles(flags.MaxCycles),
		agent.WithLogger(logger))

	result, err := orchestrator.RunTurn(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, agent.ErrTurnBudgetExceeded) {
			fmt.Fprintln(os.Stderr, "Could not complete the request: the model kept calling tools past the cycle limit.")
		}
		return err
	}

	fmt.Println(result.Answer)

	// Write the package file if the offline store collected any cards
	if pkg != nil && pkg.NoteCount() > 0 {
		if err := pkg.Flush(); err != nil {
			return fmt.Errorf("failed to write package file: %w", err)
		}
		fmt.Printf("\nDeck package written to: %s\n", flags.PackageOut)
	}

	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}
