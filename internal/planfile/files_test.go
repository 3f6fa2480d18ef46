package planfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/planfile/planfile/internal/caldate"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.plan":      "INCLUDE work/work.plan\n\nTASK Main task\nDATE 2024-03-10\n",
		"work/work.plan": "INCLUDE ../other.plan\n\nTASK Work task\nDATE 2024-03-11\n",
		"other.plan":     "NOTE Other note\nDATE 2024-03-12\n",
	})

	fs, err := Load(filepath.Join(dir, "main.plan"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	paths := fs.Paths()
	if len(paths) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "main.plan" {
		t.Errorf("root = %s", paths[0])
	}

	var titles []string
	for _, sc := range fs.Commands() {
		switch cmd := sc.Command.(type) {
		case *Task:
			titles = append(titles, cmd.Title)
		case *Note:
			titles = append(titles, cmd.Title)
		}
	}
	want := []string{"Main task", "Work task", "Other note"}
	if strings.Join(titles, ",") != strings.Join(want, ",") {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.plan": "INCLUDE b.plan\n\nTASK a\nDATE 2024-03-10\n",
		"b.plan": "INCLUDE a.plan\n\nTASK b\nDATE 2024-03-11\n",
	})

	fs, err := Load(filepath.Join(dir, "a.plan"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(fs.Paths()); got != 2 {
		t.Errorf("got %d files, want 2", got)
	}
}

func TestLoadTimezoneConflict(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.plan": "TIMEZONE Europe/Berlin\n\nINCLUDE b.plan\n",
		"b.plan": "TIMEZONE America/New_York\n",
	})

	_, err := Load(filepath.Join(dir, "a.plan"))
	if err == nil {
		t.Fatalf("no error")
	}
	if !strings.Contains(err.Error(), "conflicting timezone") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadDuplicateLog(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.plan": "LOG 2024-03-10\n# one\n\nINCLUDE b.plan\n",
		"b.plan": "LOG 2024-03-10\n# two\n",
	})

	_, err := Load(filepath.Join(dir, "a.plan"))
	if err == nil {
		t.Fatalf("no error")
	}
	if !strings.Contains(err.Error(), "duplicate log entry") {
		t.Errorf("err = %v", err)
	}
}

func TestAddDoneAndSave(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.plan": "TASK Water the plants\nDATE 2024-03-10; +3d\n",
	})
	path := filepath.Join(dir, "main.plan")

	fs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	root := caldate.Date{Year: 2024, Month: 3, Day: 10}
	done := Done{
		Date:   &DoneDate{Root: root},
		DoneAt: caldate.Date{Year: 2024, Month: 3, Day: 12},
	}
	if err := fs.AddDone(Source{File: 0, Command: 0}, done); err != nil {
		t.Fatalf("AddDone: %v", err)
	}
	if err := fs.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "TASK Water the plants\nDATE 2024-03-10; +3d\nDONE [2024-03-12] 2024-03-10\n"
	if string(data) != want {
		t.Errorf("got:\n%s\nwant:\n%s", data, want)
	}
}

func TestInsertIntoCaptureFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.plan":  "INCLUDE inbox.plan\n\nTASK Main\nDATE 2024-03-10\n",
		"inbox.plan": "CAPTURE\n",
	})

	fs, err := Load(filepath.Join(dir, "main.plan"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	src := fs.InsertCommand(&Task{Title: "Captured"})
	if filepath.Base(fs.Path(src.File)) != "inbox.plan" {
		t.Errorf("captured into %s", fs.Path(src.File))
	}
	if err := fs.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "inbox.plan"))
	want := "CAPTURE\n\nTASK Captured\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestSetLog(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.plan": "LOG 2024-03-10\n# old\n",
	})
	path := filepath.Join(dir, "main.plan")

	fs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	date := caldate.Date{Year: 2024, Month: 3, Day: 10}
	fs.SetLog(date, []string{"new text"})
	fs.SetLog(caldate.Date{Year: 2024, Month: 3, Day: 11}, []string{"fresh"})
	if err := fs.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "LOG 2024-03-10\n# new text\n\nLOG 2024-03-11\n# fresh\n"
	if string(data) != want {
		t.Errorf("got:\n%s\nwant:\n%s", data, want)
	}
}

func TestCommandText(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.plan": "TASK a\nDATE 2024-03-10\n\nNOTE b\nDATE 2024-03-11\n",
	})

	fs, err := Load(filepath.Join(dir, "main.plan"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := fs.CommandText(Source{File: 0, Command: 1})
	if got != "NOTE b\nDATE 2024-03-11" {
		t.Errorf("got %q", got)
	}
}
