// Package api provides the HTTP API of the planfile daemon: entry queries,
// completion endpoints, ICS export and a websocket feed that announces plan
// file changes.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/planfile/planfile/internal/caldate"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/ics"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/planfile"
	"github.com/planfile/planfile/internal/storage"
	"github.com/planfile/planfile/internal/timeline"
)

// defaultRangeDays is the window served when the request names no range.
const defaultRangeDays = 14

// Server is the daemon's HTTP server.
type Server struct {
	cfg        *config.Config
	archive    *storage.ArchiveStore // nil when the archive is unavailable
	hub        *Hub
	router     *chi.Mux
	httpServer *http.Server

	// Serializes plan file mutations from concurrent requests.
	mu sync.Mutex
}

// New creates the server. archive may be nil; completions then only go to
// the plan files.
func New(cfg *config.Config, archive *storage.ArchiveStore) *Server {
	s := &Server{
		cfg:     cfg,
		archive: archive,
		hub:     NewHub(),
	}
	s.setupRouter()
	s.httpServer = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.router,
	}
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/entries", s.handleEntries)
		r.Get("/files", s.handleFiles)
		r.Post("/done", s.handleDone)
		r.Post("/cancel", s.handleCancel)
		r.Get("/export/ics", s.handleExportICS)
		r.Get("/watch", s.hub.handleWatch)
	})

	s.router = r
}

// Start runs the server until ListenAndServe returns.
func (s *Server) Start() error {
	logging.WithField("addr", s.httpServer.Addr).Info("api server starting")
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Hub exposes the websocket hub so the file watcher can broadcast.
func (s *Server) Hub() *Hub { return s.hub }

// load reads the plan file collection fresh from disk. Requests always see
// the current files; the watcher only exists to notify clients.
func (s *Server) load() (*planfile.Files, error) {
	return planfile.Load(s.cfg.MainPath())
}

// EntryJSON is the wire form of one evaluated entry.
type EntryJSON struct {
	Number int      `json:"number"`
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Desc   []string `json:"desc,omitempty"`
	Start  string   `json:"start,omitempty"`
	End    string   `json:"end,omitempty"`
	DoneAt string   `json:"done_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// requestRange resolves from/until/mode query parameters against today,
// defaulting to two weeks from today in relevant mode.
func requestRange(r *http.Request, today caldate.Date) (eval.DateRange, eval.EntryMode, error) {
	mode := eval.ModeRelevant
	if m := r.URL.Query().Get("mode"); m != "" {
		parsed, ok := eval.ParseEntryMode(m)
		if !ok {
			return eval.DateRange{}, 0, &badRequestError{"unknown mode: " + m}
		}
		mode = parsed
	}

	from := today
	if arg := r.URL.Query().Get("from"); arg != "" {
		parsed, err := parseDateParam(arg, today)
		if err != nil {
			return eval.DateRange{}, 0, err
		}
		from = parsed
	}

	until := from.AddDays(defaultRangeDays - 1)
	if arg := r.URL.Query().Get("until"); arg != "" {
		parsed, err := parseDateParam(arg, today)
		if err != nil {
			return eval.DateRange{}, 0, err
		}
		until = parsed
	}

	rng, ok := eval.NewDateRange(from, until)
	if !ok {
		return eval.DateRange{}, 0, &badRequestError{"until before from"}
	}
	return rng, mode, nil
}

func parseDateParam(arg string, today caldate.Date) (caldate.Date, error) {
	dateArg, err := planfile.ParseDateArg(arg)
	if err != nil {
		return caldate.Date{}, &badRequestError{err.Error()}
	}
	date, err := eval.ResolveDateArg(dateArg, today)
	if err != nil {
		return caldate.Date{}, &badRequestError{err.Error()}
	}
	return date, nil
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	fs, err := s.load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	today, now := fs.Now()

	rng, mode, err := requestRange(r, today)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := eval.Evaluate(fs.Commands(), mode, rng)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":    rng.From().String(),
		"until":   rng.Until().String(),
		"mode":    mode.String(),
		"entries": entriesJSON(entries, rng, today, now),
	})
}

// entriesJSON converts entries to their wire form, numbered the same way
// the timeline numbers them so the done/cancel endpoints line up with what
// clients display.
func entriesJSON(entries []*eval.Entry, rng eval.DateRange, today caldate.Date, now caldate.Time) []EntryJSON {
	layout := timeline.Layout(entries, rng, today, now)

	var out []EntryJSON
	for number := 1; ; number++ {
		index, ok := layout.LookUpNumber(number)
		if !ok {
			break
		}
		entry := entries[index]

		ej := EntryJSON{
			Number: number,
			Kind:   entry.Kind.String(),
			Title:  entry.Title,
			Desc:   entry.Desc,
		}
		if entry.Dates != nil {
			ej.Start = entry.Dates.Start().String()
			ej.End = entry.Dates.End().String()
		}
		if entry.DoneAt != nil {
			ej.DoneAt = entry.DoneAt.String()
		}
		out = append(out, ej)
	}
	return out
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	fs, err := s.load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"files": fs.Paths(),
	})
}

// CompleteRequest selects an entry by its display number within a range.
type CompleteRequest struct {
	Number int    `json:"number"`
	From   string `json:"from,omitempty"`
	Until  string `json:"until,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

func (s *Server) handleDone(w http.ResponseWriter, r *http.Request) {
	s.complete(w, r, false)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.complete(w, r, true)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request, canceled bool) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Number < 1 {
		s.respondError(w, http.StatusBadRequest, "number must be positive")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fs, err := s.load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	today, now := fs.Now()

	// Rebuild the query parameters so the number resolves against the same
	// listing the client saw.
	query := r.URL.Query()
	query.Set("from", req.From)
	query.Set("until", req.Until)
	query.Set("mode", req.Mode)
	for k := range query {
		if query.Get(k) == "" {
			query.Del(k)
		}
	}
	r.URL.RawQuery = query.Encode()

	rng, mode, err := requestRange(r, today)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := eval.Evaluate(fs.Commands(), mode, rng)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	layout := timeline.Layout(entries, rng, today, now)
	index, ok := layout.LookUpNumber(req.Number)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no entry with that number")
		return
	}
	entry := entries[index]
	if entry.Kind != eval.EntryTask {
		s.respondError(w, http.StatusBadRequest, "entry is not an open task")
		return
	}

	done := doneRecord(entry, canceled, today)
	if err := fs.AddDone(entry.Source, done); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := fs.Save(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.recordCompletion(fs, entry, canceled, today)
	s.hub.BroadcastRefresh()

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"title":    entry.Title,
		"canceled": canceled,
		"done_at":  today.String(),
	})
}

// doneRecord builds the completion for an entry, carrying its occurrence
// dates and times so the record pins the right occurrence.
func doneRecord(entry *eval.Entry, canceled bool, today caldate.Date) planfile.Done {
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

// recordCompletion archives a completion best-effort: failures warn but
// never block the plan file write.
func (s *Server) recordCompletion(fs *planfile.Files, entry *eval.Entry, canceled bool, today caldate.Date) {
	if s.archive == nil {
		return
	}
	kind := "done"
	if canceled {
		kind = "canceled"
	}
	c := &storage.Completion{
		File:   fs.Path(entry.Source.File),
		Title:  entry.Title,
		Kind:   kind,
		DoneAt: today,
	}
	if entry.Dates != nil {
		root := entry.Dates.Root()
		c.RootDate = &root
	}
	if err := s.archive.Record(c); err != nil {
		logging.WithError(err).Warn("failed to archive completion")
	}
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	fs, err := s.load()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	today, _ := fs.Now()

	rng, mode, err := requestRange(r, today)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := eval.Evaluate(fs.Commands(), mode, rng)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planfile.ics"`)
	w.Write([]byte(ics.Export(fs, entries, time.Now())))
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
