package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"agstrans/internal/assets"
	"agstrans/internal/catalog"
	"agstrans/internal/config"
	"agstrans/internal/interpolation"
	"agstrans/internal/parser"
	"agstrans/internal/stringmap"
	"agstrans/internal/textutil"
	"agstrans/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
)

// errCheckFailed is returned by `check` when any pack has problems.
var errCheckFailed = errors.New("pack check failed")

func dumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <pack-file>",
		Short: "Print the entries of a .tra or .trs pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			encName, _ := cmd.Flags().GetString("encoding")
			fromDB, _ := cmd.Flags().GetBool("from-db")
			return runDump(cmd.OutOrStdout(), args[0], format, encName, fromDB)
		},
	}

	cmd.Flags().String("format", "tsv", "Output format: tsv, json or trs")
	cmd.Flags().String("encoding", "", "Code page the pack was written in (default: raw bytes)")
	cmd.Flags().Bool("from-db", false, "Read the named pack from the PostgreSQL catalog instead of a file")

	return cmd
}

func compileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <source.trs> <output.tra>",
		Short: "Build a binary pack from a text pack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := compileOptions{}
			opts.encoding, _ = cmd.Flags().GetString("encoding")
			opts.gameID, _ = cmd.Flags().GetInt32("game-id")
			opts.gameName, _ = cmd.Flags().GetString("game-name")
			opts.normalFont, _ = cmd.Flags().GetInt("normal-font")
			opts.speechFont, _ = cmd.Flags().GetInt("speech-font")
			opts.direction, _ = cmd.Flags().GetString("direction")
			return runCompile(cmd.OutOrStdout(), args[0], args[1], opts)
		},
	}

	cmd.Flags().String("encoding", "", "Convert the UTF-8 source into this code page")
	cmd.Flags().Int32("game-id", 0, "Unique ID of the game the pack is for")
	cmd.Flags().String("game-name", "", "Name of the game the pack is for")
	cmd.Flags().Int("normal-font", -1, "Normal font override (-1 keeps the game's)")
	cmd.Flags().Int("speech-font", -1, "Speech font override (-1 keeps the game's)")
	cmd.Flags().String("direction", "", "Text direction override: ltr or rtl")

	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <directory>",
		Short: "Parse every pack in a directory and lint placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0])
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <pack-file>",
		Short: "Upload a pack and its untranslated log to PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.OutOrStdout(), args[0])
		},
	}
}

// runDump handles the `dump` command.
func runDump(out io.Writer, path, format, encName string, fromDB bool) error {
	enc, err := textutil.CodePage(encName)
	if err != nil {
		return err
	}

	var packEntries *stringmap.Map
	if fromDB {
		packEntries, err = loadCatalogPack(packName(path))
	} else {
		var result *parser.ParseResult
		if result, err = readPack(path); err == nil {
			packEntries = result.Entries
		}
	}
	if err != nil {
		return err
	}

	entries, err := catalog.Entries(packEntries, enc)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return catalog.ExportJSON(out, entries)
	case "trs":
		m := stringmap.New()
		for _, e := range entries {
			m.Insert(e.SourceText, e.TranslatedText)
		}
		bw := bufio.NewWriter(out)
		if err := parser.NewTextParser().Reconstruct(bw, &parser.ParseResult{Format: parser.FormatText, Entries: m}); err != nil {
			return err
		}
		return bw.Flush()
	case "tsv", "":
		return catalog.ExportTSV(out, entries)
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

// loadCatalogPack reads a synced pack back from PostgreSQL.
func loadCatalogPack(name string) (*stringmap.Map, error) {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	pool, err := catalog.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	m, err := catalog.NewStore(pool).LoadPack(ctx, name)
	if err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return nil, fmt.Errorf("pack %s not found in catalog", name)
	}
	log.Info().Str("pack", name).Int("entries", m.Len()).Msg("Loaded pack from catalog")
	return m, nil
}

type compileOptions struct {
	encoding   string
	gameID     int32
	gameName   string
	normalFont int
	speechFont int
	direction  string
}

// runCompile handles the `compile` command.
func runCompile(out io.Writer, src, dst string, opts compileOptions) error {
	enc, err := textutil.CodePage(opts.encoding)
	if err != nil {
		return err
	}

	source, err := readPack(src)
	if err != nil {
		return err
	}

	entries, err := encodeEntries(source.Entries, enc)
	if err != nil {
		return err
	}

	result := &parser.ParseResult{Format: parser.FormatBinary, Entries: entries}
	if opts.gameID != 0 || opts.gameName != "" {
		result.Game = &parser.GameIdentity{UniqueID: opts.gameID, Name: opts.gameName}
	}

	dir, err := parseDirection(opts.direction)
	if err != nil {
		return err
	}
	if opts.normalFont >= 0 || opts.speechFont >= 0 || dir != parser.DirectionUnchanged {
		result.Settings = &parser.DisplaySettings{
			NormalFont: opts.normalFont,
			SpeechFont: opts.speechFont,
			Direction:  dir,
		}
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create pack: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := parser.NewBinaryParser(parser.BinaryOptions{}).Reconstruct(bw, result); err != nil {
		f.Close()
		return fmt.Errorf("write pack %s: %w", filepath.Base(dst), err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write pack %s: %w", filepath.Base(dst), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pack: %w", err)
	}

	log.Info().Str("source", src).Str("output", dst).Int("entries", entries.Len()).Msg("Pack compiled")
	fmt.Fprintf(out, "%s: %d entries\n", filepath.Base(dst), entries.Len())
	return nil
}

// encodeEntries converts UTF-8 entries into enc.
func encodeEntries(m *stringmap.Map, enc encoding.Encoding) (*stringmap.Map, error) {
	encoded := stringmap.New()
	var encErr error
	m.Each(func(original, translated string) {
		if encErr != nil {
			return
		}
		o, err := textutil.FromUTF8(enc, original)
		if err != nil {
			encErr = fmt.Errorf("encode %q: %w", textutil.Truncate(original, 30), err)
			return
		}
		t, err := textutil.FromUTF8(enc, translated)
		if err != nil {
			encErr = fmt.Errorf("encode translation of %q: %w", textutil.Truncate(original, 30), err)
			return
		}
		encoded.Insert(o, t)
	})
	if encErr != nil {
		return nil, encErr
	}
	return encoded, nil
}

func parseDirection(s string) (parser.Direction, error) {
	switch strings.ToLower(s) {
	case "":
		return parser.DirectionUnchanged, nil
	case "ltr", "left":
		return parser.DirectionLeftToRight, nil
	case "rtl", "right":
		return parser.DirectionRightToLeft, nil
	}
	return 0, fmt.Errorf("unknown text direction %q", s)
}

// packReport is the outcome of checking a single pack.
type packReport struct {
	entries int
	issues  []interpolation.Issue
}

// runCheck handles the `check` command.
func runCheck(out io.Writer, dir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	packs, err := assets.ListPacks(dir)
	if err != nil {
		return err
	}
	if len(packs) == 0 {
		log.Warn().Str("dir", dir).Msg("No packs found")
		return nil
	}

	pool := worker.NewPool[assets.PackEntry, packReport](cfg.WorkerCount, func(ctx context.Context, p assets.PackEntry) (packReport, error) {
		if err := ctx.Err(); err != nil {
			return packReport{}, err
		}
		return checkPack(p)
	})

	failed := 0
	for _, r := range pool.Execute(ctx, packs) {
		name := filepath.Base(r.Input.Path)
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", name, r.Err)
			continue
		}
		if len(r.Output.issues) > 0 {
			failed++
			fmt.Fprintf(out, "FAIL %s: %d entries, %d placeholder mismatches\n", name, r.Output.entries, len(r.Output.issues))
			for _, issue := range r.Output.issues {
				fmt.Fprintf(out, "  %q: %s\n", textutil.Truncate(issue.Original, 60), issue)
			}
			continue
		}
		fmt.Fprintf(out, "ok   %s: %d entries\n", name, r.Output.entries)
	}

	log.Info().Int("packs", len(packs)).Int("failed", failed).Msg("Check complete")
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d packs", errCheckFailed, failed, len(packs))
	}
	return nil
}

func checkPack(p assets.PackEntry) (packReport, error) {
	result, err := readPack(p.Path)
	if err != nil {
		return packReport{}, err
	}

	report := packReport{entries: result.Entries.Len()}
	if result.Format == parser.FormatUntranslated {
		return report, nil
	}
	result.Entries.Each(func(original, translated string) {
		if issue, ok := interpolation.Check(original, translated); !ok {
			report.issues = append(report.issues, issue)
		}
	})
	return report, nil
}

// runSync handles the `sync` command.
func runSync(out io.Writer, path string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()

	result, err := readPack(path)
	if err != nil {
		return err
	}
	name := packName(path)

	pool, err := catalog.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := catalog.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	changed, err := store.UpsertPack(ctx, name, result.Entries)
	if err != nil {
		return err
	}

	added := 0
	logPath := filepath.Join(filepath.Dir(path), name+"_untrans.trs")
	if found, err := assets.FindFile(filepath.Dir(path), name+"_untrans.trs"); err == nil {
		logPath = found
		untrans, err := readPack(logPath)
		if err != nil {
			return err
		}
		var texts []string
		untrans.Entries.Each(func(original, _ string) {
			texts = append(texts, original)
		})
		if added, err = store.RecordUntranslated(ctx, name, texts); err != nil {
			return err
		}
	} else {
		log.Debug().Str("log", logPath).Msg("No untranslated log to sync")
	}

	pending, err := store.ListUntranslated(ctx, name)
	if err != nil {
		return err
	}

	log.Info().
		Str("pack", name).
		Int("changed", changed).
		Int("untranslated_added", added).
		Int("pending", len(pending)).
		Msg("Sync complete")

	fmt.Fprintf(out, "%s: %d entries changed, %d untranslated added, %d pending\n", name, changed, added, len(pending))
	return nil
}

// packName strips the directory and pack extension from path.
func packName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
