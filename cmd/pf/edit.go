package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/planfile"
)

func newCmd() *cobra.Command {
	var dateArg string

	cmd := &cobra.Command{
		Use:   "new task|note|done [title...]",
		Short: "Add a new task, note or quick completion",
		Long: `new task and new note open your editor on a template and insert the
result into the capture file. new done records an already finished chore
without scheduling it first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			switch args[0] {
			case "task":
				return newCommand(dateArg, "TASK", title)
			case "note":
				return newCommand(dateArg, "NOTE", title)
			case "done":
				return newQuickDone(dateArg, title)
			default:
				return fmt.Errorf("expected task, note or done, got %q", args[0])
			}
		},
	}
	cmd.Flags().StringVar(&dateArg, "date", "", "date for the new entry")
	return cmd
}

func newCommand(dateArg, keyword, title string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs, err := openFiles(cfg)
	if err != nil {
		return err
	}
	today, _, err := resolveToday(fs)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", keyword, title)
	if dateArg != "" {
		date, err := resolveDateFlag(dateArg, today)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "DATE %s\n", date)
	}

	text, err := editText(cfg, "new.plan", b.String())
	if err != nil {
		return err
	}
	cmd, err := parseSingleCommand(text)
	if err != nil {
		return err
	}
	switch cmd.(type) {
	case *planfile.Task, *planfile.Note:
	default:
		return fmt.Errorf("expected a single %s command", keyword)
	}

	src := fs.InsertCommand(cmd)
	if err := fs.Save(); err != nil {
		return err
	}
	fmt.Printf("added to %s\n", fs.Path(src.File))
	return nil
}

func newQuickDone(dateArg, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("new done needs a title")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fs, err := openFiles(cfg)
	if err != nil {
		return err
	}
	today, _, err := resolveToday(fs)
	if err != nil {
		return err
	}
	doneAt := today
	if dateArg != "" {
		if doneAt, err = resolveDateFlag(dateArg, today); err != nil {
			return err
		}
	}

	fs.InsertCommand(&planfile.Task{
		Title: title,
		Dones: []planfile.Done{{DoneAt: doneAt}},
	})
	if err := fs.Save(); err != nil {
		return err
	}
	fmt.Printf("done: %s\n", title)
	return nil
}

func editCmd() *cobra.Command {
	var rangeArg string
	cmd := &cobra.Command{
		Use:   "edit <num>...",
		Short: "Edit entries in your editor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(args, rangeArg)
		},
	}
	cmd.Flags().StringVar(&rangeArg, "range", "", "range the numbers refer to")
	return cmd
}

func runEdit(args []string, rangeArg string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := buildListing(cfg, rangeArg)
	if err != nil {
		return err
	}

	for _, arg := range args {
		number, err := strconv.Atoi(arg)
		if err != nil || number < 1 {
			return fmt.Errorf("expected an entry number, got %q", arg)
		}
		entry, err := l.byNumber(number)
		if err != nil {
			return err
		}

		text, err := editText(cfg, "edit.plan", l.fs.CommandText(entry.Source))
		if err != nil {
			return err
		}
		cmd, err := parseSingleCommand(text)
		if err != nil {
			return err
		}
		l.fs.ReplaceCommand(entry.Source, cmd)
	}
	return l.fs.Save()
}

func logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [date]",
		Short: "Edit a day's log entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}
			today, _, err := resolveToday(fs)
			if err != nil {
				return err
			}
			date := today
			if len(args) == 1 {
				if date, err = resolveDateFlag(args[0], today); err != nil {
					return err
				}
			}

			var initial string
			if log, _, ok := fs.LogAt(date); ok {
				initial = strings.Join(log.Desc, "\n") + "\n"
			}
			text, err := editText(cfg, "log.txt", initial)
			if err != nil {
				return err
			}

			fs.SetLog(date, descLines(text))
			return fs.Save()
		},
	}
}

func fmtCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite plan files in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}
			if all {
				fs.MarkAllDirty()
			} else {
				fs.MarkDirty(0)
			}
			return fs.Save()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also rewrite included files")
	return cmd
}

// --- Editor plumbing ---

func editorBinary(cfg *config.Config) string {
	if cfg.Editor != "" {
		return cfg.Editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// editText opens the user's editor on a scratch file seeded with initial
// and returns the saved content.
func editText(cfg *config.Config, name, initial string) (string, error) {
	dir, err := os.MkdirTemp("", "planfile-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(initial), 0o600); err != nil {
		return "", err
	}

	cmd := exec.Command(editorBinary(cfg), path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseSingleCommand parses edited text that must hold exactly one command.
func parseSingleCommand(text string) (planfile.Command, error) {
	file, err := planfile.ParseFile("edited text", text)
	if err != nil {
		return nil, err
	}
	if len(file.Commands) != 1 {
		return nil, fmt.Errorf("expected exactly one command, got %d", len(file.Commands))
	}
	return file.Commands[0].Command, nil
}

func resolveDateFlag(arg string, today caldate.Date) (caldate.Date, error) {
	parsed, err := planfile.ParseDateArg(arg)
	if err != nil {
		return caldate.Date{}, err
	}
	return eval.ResolveDateArg(parsed, today)
}

// descLines splits edited log text into description lines, dropping
// trailing blank lines.
func descLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
