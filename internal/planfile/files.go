package planfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/planfile/planfile/internal/caldate"
)

// LoadedFile is a single parsed plan file within a collection.
type LoadedFile struct {
	Path   string // absolute path
	Source string // raw text as last read or written
	File   File
	Dirty  bool
}

// Files is a loaded plan file collection: the root file plus everything it
// includes, transitively. Mutations go through methods that mark the touched
// file dirty; Save rewrites dirty files in canonical form.
type Files struct {
	files   []LoadedFile
	tz      *time.Location
	tzName  string
	tzFile  int
	capture int // file index of the first CAPTURE file, -1 if none
	logs    map[caldate.Date]Source
}

// Load reads the plan file at root and all files it includes.
func Load(root string) (*Files, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fs := &Files{
		capture: -1,
		logs:    make(map[caldate.Date]Source),
	}
	if err := fs.load(abs, make(map[string]bool)); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *Files) load(path string, seen map[string]bool) error {
	path = filepath.Clean(path)
	if seen[path] {
		return nil
	}
	seen[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	src := string(data)
	file, err := ParseFile(path, src)
	if err != nil {
		return err
	}

	index := len(fs.files)
	fs.files = append(fs.files, LoadedFile{Path: path, Source: src, File: file})

	for ci, fc := range file.Commands {
		switch cmd := fc.Command.(type) {
		case *Include:
			target := cmd.Path
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			if err := fs.load(target, seen); err != nil {
				return err
			}
		case *Timezone:
			if err := fs.setTimezone(index, cmd); err != nil {
				return err
			}
		case *Capture:
			if fs.capture == -1 {
				fs.capture = index
			}
		case *Log:
			if prev, ok := fs.logs[cmd.Date]; ok {
				return newParseError(path, src, cmd.DateSpan,
					fmt.Sprintf("duplicate log entry (already logged in %s)", fs.files[prev.File].Path))
			}
			fs.logs[cmd.Date] = Source{File: index, Command: ci}
		}
	}
	return nil
}

func (fs *Files) setTimezone(index int, cmd *Timezone) error {
	path := fs.files[index].Path
	src := fs.files[index].Source
	if fs.tz != nil {
		if fs.tzName != cmd.Name {
			return newParseError(path, src, cmd.NameSpan,
				fmt.Sprintf("conflicting timezone (already set to %s in %s)", fs.tzName, fs.files[fs.tzFile].Path))
		}
		return nil
	}
	loc, err := time.LoadLocation(cmd.Name)
	if err != nil {
		return newParseError(path, src, cmd.NameSpan, "unknown timezone")
	}
	fs.tz = loc
	fs.tzName = cmd.Name
	fs.tzFile = index
	return nil
}

// Timezone returns the collection's working timezone, defaulting to the
// system's local zone.
func (fs *Files) Timezone() *time.Location {
	if fs.tz != nil {
		return fs.tz
	}
	return time.Local
}

// Now returns the current date and time in the collection's timezone.
func (fs *Files) Now() (caldate.Date, caldate.Time) {
	now := time.Now().In(fs.Timezone())
	date := caldate.Date{Year: now.Year(), Month: int(now.Month()), Day: now.Day()}
	t, _ := caldate.NewTime(now.Hour(), now.Minute())
	return date, t
}

// Commands flattens all commands of all files, each with its source
// location.
func (fs *Files) Commands() []SourcedCommand {
	var out []SourcedCommand
	for fi := range fs.files {
		for ci, fc := range fs.files[fi].File.Commands {
			out = append(out, SourcedCommand{
				Source:  Source{File: fi, Command: ci},
				Command: fc.Command,
			})
		}
	}
	return out
}

// Command returns the command at the given source location.
func (fs *Files) Command(src Source) Command {
	return fs.files[src.File].File.Commands[src.Command].Command
}

// CommandText returns the source text of the command at the given location.
func (fs *Files) CommandText(src Source) string {
	f := &fs.files[src.File]
	span := f.File.Commands[src.Command].Span
	end := span.End
	if end > len(f.Source) {
		end = len(f.Source)
	}
	return f.Source[span.Start:end]
}

// Path returns the path of the file with the given index.
func (fs *Files) Path(index int) string {
	return fs.files[index].Path
}

// Paths lists all loaded file paths, root first.
func (fs *Files) Paths() []string {
	paths := make([]string, len(fs.files))
	for i := range fs.files {
		paths[i] = fs.files[i].Path
	}
	return paths
}

// LogAt returns the log command for the given date, if any.
func (fs *Files) LogAt(date caldate.Date) (*Log, Source, bool) {
	src, ok := fs.logs[date]
	if !ok {
		return nil, Source{}, false
	}
	return fs.Command(src).(*Log), src, true
}

// captureFile is where new commands land: the first CAPTURE file, or the
// root file if none is marked.
func (fs *Files) captureFile() int {
	if fs.capture != -1 {
		return fs.capture
	}
	return 0
}

// AddDone appends a completion record to the task at src.
func (fs *Files) AddDone(src Source, done Done) error {
	task, ok := fs.Command(src).(*Task)
	if !ok {
		return fmt.Errorf("%s: not a task", fs.files[src.File].Path)
	}
	task.Dones = append(task.Dones, done)
	fs.MarkDirty(src.File)
	return nil
}

// InsertCommand appends a command to the capture file and returns its
// location.
func (fs *Files) InsertCommand(cmd Command) Source {
	fi := fs.captureFile()
	f := &fs.files[fi]
	f.File.Commands = append(f.File.Commands, FileCommand{Command: cmd})
	fs.MarkDirty(fi)
	return Source{File: fi, Command: len(f.File.Commands) - 1}
}

// ReplaceCommand swaps the command at src for a new one.
func (fs *Files) ReplaceCommand(src Source, cmd Command) {
	fs.files[src.File].File.Commands[src.Command].Command = cmd
	fs.MarkDirty(src.File)
}

// SetLog replaces the description of the log entry for date, creating the
// entry in the capture file if it does not exist yet.
func (fs *Files) SetLog(date caldate.Date, desc []string) {
	if log, src, ok := fs.LogAt(date); ok {
		log.Desc = desc
		fs.MarkDirty(src.File)
		return
	}
	src := fs.InsertCommand(&Log{Date: date, Desc: desc})
	fs.logs[date] = src
}

// MarkDirty queues the file for rewriting on the next Save.
func (fs *Files) MarkDirty(index int) {
	fs.files[index].Dirty = true
}

// MarkAllDirty queues every file for rewriting.
func (fs *Files) MarkAllDirty() {
	for i := range fs.files {
		fs.files[i].Dirty = true
	}
}

// Save rewrites all dirty files in canonical form.
func (fs *Files) Save() error {
	for i := range fs.files {
		f := &fs.files[i]
		if !f.Dirty {
			continue
		}
		text := FormatFile(&f.File, nil)
		if err := os.WriteFile(f.Path, []byte(text), 0o644); err != nil {
			return err
		}
		f.Source = text
		f.Dirty = false
	}
	return nil
}
