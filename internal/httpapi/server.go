package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/apiprobe/internal/httpapi/middleware"
	"github.com/hamed0406/apiprobe/internal/probe"
	"github.com/hamed0406/apiprobe/internal/repo"
	"github.com/hamed0406/apiprobe/internal/report"
	"github.com/hamed0406/apiprobe/internal/suite"
)

// Options carries everything the server needs beyond its collaborators.
type Options struct {
	Keys        middleware.Keys
	PublicRPM   int
	PublicBurst int
	SuitePath   string // default suite for POST /api/runs
	BaseURL     string // default base override
}

type Server struct {
	Logger *zap.Logger
	Runs   repo.RunStore
	Opts   Options
}

func NewServer(l *zap.Logger, runs repo.RunStore, opts Options) *Server {
	return &Server{Logger: l, Runs: runs, Opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.Opts.PublicRPM, s.Opts.PublicBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireReader(s.Opts.Keys))
		r.Get("/api/runs", s.handleListRuns)
		r.Get("/api/runs/{id}", s.handleGetRun)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.Opts.Keys))
		r.Post("/api/runs", s.handleTriggerRun)
	})

	return r
}

type triggerPayload struct {
	SuitePath string `json:"suitePath"`
	BaseURL   string `json:"baseUrl"`
}

func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var p triggerPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	// an empty body means "use defaults"; anything else must parse
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad trigger payload", http.StatusBadRequest)
		return
	}
	if p.SuitePath == "" {
		p.SuitePath = s.Opts.SuitePath
	}
	if p.BaseURL == "" {
		p.BaseURL = s.Opts.BaseURL
	}
	if p.SuitePath == "" {
		http.Error(w, "no suite configured", http.StatusBadRequest)
		return
	}

	st, err := suite.Load(p.SuitePath)
	if err != nil {
		s.Logger.Warn("suite_load_failed", zap.String("path", p.SuitePath), zap.Error(err))
		http.Error(w, "suite load failed", http.StatusBadRequest)
		return
	}
	specs, err := st.Build(p.BaseURL)
	if err != nil {
		http.Error(w, "suite build failed", http.StatusBadRequest)
		return
	}

	// one request-scoped runner per trigger: the log stays single-writer
	runner := probe.NewRunner(nil)
	started := time.Now().UTC()
	if _, err := runner.RunAll(r.Context(), specs); err != nil {
		s.Logger.Warn("run_failed", zap.Error(err))
		http.Error(w, "invalid probe spec", http.StatusBadRequest)
		return
	}

	target := p.BaseURL
	if target == "" {
		target = st.BaseURL
	}
	run := &repo.StoredRun{
		Suite:     st.Name,
		StartedAt: started,
		Document:  report.New(target, runner.Report()),
	}
	if err := s.Runs.Save(r.Context(), run); err != nil {
		http.Error(w, "could not store run", http.StatusInternalServerError)
		return
	}

	sum := run.Document.Summary
	s.Logger.Info("run_completed",
		zap.String("run_id", run.ID),
		zap.String("suite", run.Suite),
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("errored", sum.Errored),
	)

	writeJSON(w, http.StatusCreated, run)
}

type runListItem struct {
	ID        string        `json:"id"`
	Suite     string        `json:"suite"`
	StartedAt time.Time     `json:"startedAt"`
	Summary   probe.Summary `json:"summary"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Runs.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	items := make([]runListItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, runListItem{
			ID:        run.ID,
			Suite:     run.Suite,
			StartedAt: run.StartedAt,
			Summary:   run.Document.Summary,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "get error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
