// planfile CLI - plan file timeline, completion and calendar tooling.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/planfile"
	"github.com/planfile/planfile/internal/storage"
	"github.com/planfile/planfile/internal/timeline"
)

// defaultRangeDays is the window shown when no range is given.
const defaultRangeDays = 14

var (
	// Global flags
	configPath string
	fileFlag   string
	dateFlag   string
	modeFlag   string
	verbose    bool

	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pf",
		Short: "planfile - plain text planning files",
		Long: `planfile keeps your plans in plain text files and shows them as a
timeline. Tasks, notes, logs and birthdays live in .plan files you edit
with your own editor; pf evaluates their date specifications, renders the
coming days and records completions back into the files.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetLevel(logging.DEBUG)
			} else {
				logging.SetLevel(logging.WARN)
			}
		},
		// Bare `pf` (optionally with a range or identifiers) is `pf show`.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/planfile/config.json)")
	rootCmd.PersistentFlags().StringVar(&fileFlag, "file", "", "root plan file (default from config)")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "act as if today were this date")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "relevant", "entry mode: rooted, touching or relevant")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(fmtCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(icsCmd())
	rootCmd.AddCommand(gcalCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pf:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the planfile version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("planfile %s\n", version)
		},
	}
}

// --- Shared plumbing ---

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// openFiles loads the plan file collection named by --file or the config.
func openFiles(cfg *config.Config) (*planfile.Files, error) {
	path := cfg.MainPath()
	if fileFlag != "" {
		path = fileFlag
	}
	return planfile.Load(path)
}

// resolveToday returns the collection's today and now, with --date
// overriding the date.
func resolveToday(fs *planfile.Files) (caldate.Date, caldate.Time, error) {
	today, now := fs.Now()
	if dateFlag == "" {
		return today, now, nil
	}
	arg, err := planfile.ParseDateArg(dateFlag)
	if err != nil {
		return caldate.Date{}, caldate.Time{}, fmt.Errorf("--date: %w", err)
	}
	date, err := eval.ResolveDateArg(arg, today)
	if err != nil {
		return caldate.Date{}, caldate.Time{}, fmt.Errorf("--date: %w", err)
	}
	return date, now, nil
}

func resolveMode() (eval.EntryMode, error) {
	mode, ok := eval.ParseEntryMode(modeFlag)
	if !ok {
		return 0, fmt.Errorf("unknown mode %q (want rooted, touching or relevant)", modeFlag)
	}
	return mode, nil
}

// resolveRange parses a command line range, defaulting to two weeks from
// today.
func resolveRange(arg string, today caldate.Date) (eval.DateRange, error) {
	if strings.TrimSpace(arg) == "" {
		r, _ := eval.NewDateRange(today, today.AddDays(defaultRangeDays-1))
		return r, nil
	}
	parsed, err := planfile.ParseRangeArg(arg)
	if err != nil {
		return eval.DateRange{}, err
	}
	return eval.ResolveRangeArg(parsed, today)
}

// listing is one evaluated and numbered timeline, the thing display numbers
// refer to.
type listing struct {
	fs      *planfile.Files
	entries []*eval.Entry
	layout  *timeline.LineLayout
	rng     eval.DateRange
	today   caldate.Date
	now     caldate.Time
}

// buildListing loads, evaluates and numbers the entries for a range
// argument, so commands taking display numbers resolve them against the
// same listing `pf show` renders.
func buildListing(cfg *config.Config, rangeArg string) (*listing, error) {
	fs, err := openFiles(cfg)
	if err != nil {
		return nil, err
	}
	today, now, err := resolveToday(fs)
	if err != nil {
		return nil, err
	}
	mode, err := resolveMode()
	if err != nil {
		return nil, err
	}
	rng, err := resolveRange(rangeArg, today)
	if err != nil {
		return nil, err
	}
	entries, err := eval.Evaluate(fs.Commands(), mode, rng)
	if err != nil {
		return nil, err
	}
	return &listing{
		fs:      fs,
		entries: entries,
		layout:  timeline.Layout(entries, rng, today, now),
		rng:     rng,
		today:   today,
		now:     now,
	}, nil
}

// byNumber returns the entry with the given display number.
func (l *listing) byNumber(number int) (*eval.Entry, error) {
	index, ok := l.layout.LookUpNumber(number)
	if !ok {
		return nil, fmt.Errorf("no entry %d in %s", number, l.rng)
	}
	return l.entries[index], nil
}

// openArchive opens the completion archive, or returns nil when archiving
// is disabled in the config.
func openArchive(cfg *config.Config) (*storage.ArchiveStore, func(), error) {
	if cfg.Archive.Path == "" {
		return nil, func() {}, nil
	}
	db, err := storage.Open(storage.Config{Path: cfg.Archive.Path})
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return storage.NewArchiveStore(db), func() { db.Close() }, nil
}
