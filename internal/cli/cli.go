package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"agstrans/internal/assets"
	"agstrans/internal/config"
	"agstrans/internal/parser"
	"agstrans/internal/setupcfg"
	"agstrans/internal/textutil"
	"agstrans/internal/translation"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "agstrans",
		Short:        "Inspect, build and serve AGS game translations",
		Long:         "Tools for AGS language packs: look up strings the way the engine does, dump and compile .tra/.trs packs, lint placeholders and share packs through PostgreSQL.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(useCmd())
	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(compileCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(syncCmd())

	return rootCmd
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <text>...",
		Short: "Load the configured pack and print the translation of each text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.OutOrStdout(), args)
		},
	}
}

func useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <language>",
		Short: "Select the translation the game loads at startup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUse(cmd.OutOrStdout(), args[0])
		},
	}
}

// runLookup handles the `lookup` command.
func runLookup(out io.Writer, texts []string) error {
	cfg := config.Load()

	enc, err := textutil.CodePage(cfg.TextEncoding)
	if err != nil {
		return err
	}
	format, err := parser.ParseFormat(cfg.PackFormat)
	if err != nil {
		return err
	}

	svc := newService(cfg)
	defer svc.Close()

	if err := svc.LoadPack(format, cfg.Language, cfg.FallbackLanguage, cfg.QuitOnError); err != nil {
		log.Warn().Err(err).Msg("Continuing without a translation")
	}
	if cfg.LogUntranslated && svc.IsAvailable() {
		if err := svc.EnableUntranslatedLog(svc.Pack().Language); err != nil {
			log.Warn().Err(err).Msg("Untranslated strings will not be logged")
		}
	}

	if name, ok := svc.Name(); ok {
		log.Info().Str("pack", name).Int("entries", svc.Pack().Len()).Msg("Translation active")
	}

	for _, text := range texts {
		raw, err := textutil.FromUTF8(enc, text)
		if err != nil {
			return fmt.Errorf("encode %q: %w", textutil.Truncate(text, 30), err)
		}
		translated, err := textutil.ToUTF8(enc, svc.Translate(raw))
		if err != nil {
			return fmt.Errorf("decode translation of %q: %w", textutil.Truncate(text, 30), err)
		}
		fmt.Fprintln(out, translated)
	}
	return nil
}

// newService wires a translation service to the configured directories.
func newService(cfg *config.Config) *translation.Service {
	opts := []translation.Option{
		translation.WithDisplay(&translation.Presentation{NormalFont: -1, SpeechFont: -1}),
		translation.WithUnfactorSpeech(cfg.UnfactorSpeechFromTextLength),
	}
	if cfg.HasGameIdentity() {
		opts = append(opts, translation.WithGame(parser.GameIdentity{
			UniqueID: int32(cfg.GameUniqueID),
			Name:     cfg.GameName,
		}))
	}

	return translation.New(assets.NewDir(cfg.DataDir), assets.NewDir(cfg.TextPackDir), opts...)
}

// runUse handles the `use` command.
func runUse(out io.Writer, language string) error {
	cfg := config.Load()

	value := strings.TrimSuffix(strings.TrimSuffix(language, ".tra"), ".trs")
	if value == "" {
		value = "default"
	}

	tree := setupcfg.Tree{}
	tree.Set("language", "translation", value)
	if err := setupcfg.Merge(cfg.SetupFile, tree); err != nil {
		return fmt.Errorf("update setup file: %w", err)
	}

	log.Info().Str("setup", cfg.SetupFile).Str("translation", value).Msg("Translation selected")
	fmt.Fprintf(out, "%s: translation = %s\n", filepath.Base(cfg.SetupFile), value)
	return nil
}

// readPack parses a pack file, choosing the reader from its name.
func readPack(path string) (*parser.ParseResult, error) {
	p, err := parser.ForFile(path, parser.BinaryOptions{})
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer f.Close()

	result, err := parser.ParseAll(p, f)
	if err != nil {
		return nil, fmt.Errorf("read pack %s: %w", filepath.Base(path), err)
	}
	return result, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
