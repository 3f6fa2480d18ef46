package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/planfile"
	"github.com/planfile/planfile/internal/storage"
)

func doneCmd() *cobra.Command {
	var rangeArg string
	cmd := &cobra.Command{
		Use:   "done <num>...",
		Short: "Mark tasks as done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return complete(args, rangeArg, false)
		},
	}
	cmd.Flags().StringVar(&rangeArg, "range", "", "range the numbers refer to")
	return cmd
}

func cancelCmd() *cobra.Command {
	var rangeArg string
	cmd := &cobra.Command{
		Use:   "cancel <num>...",
		Short: "Mark tasks as canceled",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return complete(args, rangeArg, true)
		},
	}
	cmd.Flags().StringVar(&rangeArg, "range", "", "range the numbers refer to")
	return cmd
}

func complete(args []string, rangeArg string, canceled bool) error {
	numbers := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return fmt.Errorf("expected an entry number, got %q", arg)
		}
		numbers = append(numbers, n)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := buildListing(cfg, rangeArg)
	if err != nil {
		return err
	}

	// Resolve every number against the same listing before mutating, so an
	// early completion cannot shift a later number.
	completed := make([]*eval.Entry, 0, len(numbers))
	for _, number := range numbers {
		entry, err := l.byNumber(number)
		if err != nil {
			return err
		}
		if entry.Kind != eval.EntryTask {
			return fmt.Errorf("entry %d (%s) is not an open task", number, entry.Title)
		}
		completed = append(completed, entry)
	}

	for _, entry := range completed {
		done := completionRecord(entry, canceled, l.today)
		if err := l.fs.AddDone(entry.Source, done); err != nil {
			return err
		}
	}
	if err := l.fs.Save(); err != nil {
		return err
	}

	archiveCompletions(cfg, l, completed, canceled)

	verb := "done"
	if canceled {
		verb = "canceled"
	}
	for _, entry := range completed {
		fmt.Printf("%s: %s\n", verb, entry.Title)
	}
	return nil
}

// completionRecord builds the record for an entry, carrying its occurrence
// dates and times so repeated tasks pin the right occurrence.
func completionRecord(entry *eval.Entry, canceled bool, today caldate.Date) planfile.Done {
	done := planfile.Done{Canceled: canceled, DoneAt: today}
	if entry.Dates == nil {
		return done
	}

	d := entry.Dates
	date := &planfile.DoneDate{Root: d.Root()}
	if t, ok := d.RootTime(); ok {
		date.RootTime = &t
	}
	if d.Other() != d.Root() {
		other := d.Other()
		date.Other = &other
	}
	if t, ok := d.OtherTime(); ok {
		date.OtherTime = &t
	}
	done.Date = date
	return done
}

// archiveCompletions stores the completions in the SQLite archive. Failures
// warn; the plan file write already happened and must not be blocked.
func archiveCompletions(cfg *config.Config, l *listing, completed []*eval.Entry, canceled bool) {
	archive, closeArchive, err := openArchive(cfg)
	if err != nil {
		logging.WithError(err).Warn("completion archive unavailable")
		return
	}
	if archive == nil {
		return
	}
	defer closeArchive()

	kind := "done"
	if canceled {
		kind = "canceled"
	}
	for _, entry := range completed {
		c := &storage.Completion{
			File:   l.fs.Path(entry.Source.File),
			Title:  entry.Title,
			Kind:   kind,
			DoneAt: l.today,
		}
		if entry.Dates != nil {
			root := entry.Dates.Root()
			c.RootDate = &root
		}
		if err := archive.Record(c); err != nil {
			logging.WithError(err).Warn("failed to archive completion")
		}
	}
}
