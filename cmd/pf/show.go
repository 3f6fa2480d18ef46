package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/planfile"
	"github.com/planfile/planfile/internal/timeline"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [range | num|date ...]",
		Short: "Show the timeline, or details of single entries",
		Long: `Without arguments, show renders the coming two weeks. A range argument
("2024-03-10 -- +2w") renders that window instead. Display numbers show
entry details; date arguments show that day's log entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
}

func runShow(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// A single argument with an explicit end part is a range, everything
	// else identifies entries or log days.
	if len(args) == 0 {
		return showTimeline(cfg, "")
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--") {
		return showTimeline(cfg, joined)
	}

	idents := make([]planfile.IdentArg, 0, len(args))
	for _, arg := range args {
		ident, err := planfile.ParseIdentArg(arg)
		if err != nil {
			return err
		}
		idents = append(idents, ident)
	}
	return showDetails(cfg, idents)
}

func showTimeline(cfg *config.Config, rangeArg string) error {
	l, err := buildListing(cfg, rangeArg)
	if err != nil {
		return err
	}

	p := timeline.NewPrinter()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		p.Color = false
	}
	fmt.Print(p.Print(l.layout))
	return nil
}

func showDetails(cfg *config.Config, idents []planfile.IdentArg) error {
	l, err := buildListing(cfg, "")
	if err != nil {
		return err
	}

	for i, ident := range idents {
		if i > 0 {
			fmt.Println()
		}
		if ident.IsNumber {
			entry, err := l.byNumber(ident.Number)
			if err != nil {
				return err
			}
			printEntryDetail(l.fs, entry)
			continue
		}
		date, err := eval.ResolveDateArg(ident.Date, l.today)
		if err != nil {
			return err
		}
		if err := printLogDetail(l.fs, date); err != nil {
			return err
		}
	}
	return nil
}

func printEntryDetail(fs *planfile.Files, entry *eval.Entry) {
	fmt.Printf("%s  %s\n", entry.Kind, entry.Title)
	if entry.Dates != nil {
		fmt.Printf("  when: %s\n", entry.Dates)
	}
	if entry.DoneAt != nil {
		fmt.Printf("  recorded: %s\n", entry.DoneAt)
	}
	if entry.Age != nil {
		fmt.Printf("  turns: %d\n", *entry.Age)
	}
	for _, line := range entry.Desc {
		fmt.Printf("  %s\n", line)
	}

	if task, ok := fs.Command(entry.Source).(*planfile.Task); ok && len(task.Dones) > 0 {
		fmt.Println("  history:")
		for _, done := range task.Dones {
			kind := "done"
			if done.Canceled {
				kind = "canceled"
			}
			if done.Date != nil {
				fmt.Printf("    %s [%s] %s\n", kind, done.DoneAt, done.Date.Root)
			} else {
				fmt.Printf("    %s [%s]\n", kind, done.DoneAt)
			}
		}
	}

	fmt.Printf("  file: %s\n", fs.Path(entry.Source.File))
	fmt.Println()
	for _, line := range strings.Split(strings.TrimRight(fs.CommandText(entry.Source), "\n"), "\n") {
		fmt.Printf("  | %s\n", line)
	}
}

func printLogDetail(fs *planfile.Files, date caldate.Date) error {
	log, _, ok := fs.LogAt(date)
	if !ok {
		return fmt.Errorf("no log entry for %s", date)
	}
	fmt.Printf("log  %s\n", log.Date)
	for _, line := range log.Desc {
		fmt.Printf("  %s\n", line)
	}
	return nil
}
