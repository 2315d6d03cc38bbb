package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/ledger"
	"github.com/goliatone/go-assetform/pkg/openapi"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

const (
	// FormPath receives the HTML form post.
	FormPath = "/assets"
	// NewFormPath renders an empty form.
	NewFormPath = "/assets/new"

	maxBodyBytes = 1 << 20
)

// Server wires the form, builder and dispatcher to HTTP handlers.
type Server struct {
	layout       form.Layout
	directory    agents.Directory
	submitter    transaction.Submitter
	renderer     render.Renderer
	builder      *payload.Builder
	validator    *openapi.Validator
	observer     transaction.Observer
	logger       *slog.Logger
	csrfField    string
	csrfCookie   string
	newToken     func() string
	metricsPath  string
	metrics      http.Handler
	staticPrefix string
	static       fs.FS
	agentOptions []agents.OptionFn

	mu       sync.Mutex
	inflight map[string]*inflightEntry
}

// New builds a server. The directory supplies reporter candidates, the
// submitter sends batches to the ledger and the renderer draws the HTML form.
func New(directory agents.Directory, submitter transaction.Submitter, renderer render.Renderer, options ...Option) (*Server, error) {
	if directory == nil {
		return nil, errors.New("server: agent directory is required")
	}
	if submitter == nil {
		return nil, errors.New("server: submitter is required")
	}
	if renderer == nil {
		return nil, errors.New("server: renderer is required")
	}

	s := &Server{
		layout:    form.DefaultLayout(),
		directory: directory,
		submitter: submitter,
		renderer:  renderer,
		builder:   payload.NewBuilder(),
		logger:    slog.Default(),
		newToken:  uuid.NewString,
		inflight:  make(map[string]*inflightEntry),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+NewFormPath, s.handleNew)
	mux.HandleFunc("POST "+FormPath, s.handleFormSubmit)
	mux.HandleFunc("GET "+FormPath+"/{id}", s.handleShow)
	mux.HandleFunc("POST "+openapi.AssetsPath, s.handleAPICreate)
	if _, err := agents.RegisterRoutes(mux, "", s.directory, s.agentOptions...); err != nil {
		return nil, fmt.Errorf("server: agents routes: %w", err)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics)
	}
	if s.static != nil {
		mux.Handle("GET "+s.staticPrefix, http.StripPrefix(s.staticPrefix, http.FileServerFS(s.static)))
	}
	return mux, nil
}

type inflightEntry struct {
	dispatcher *transaction.Dispatcher
	route      string
	refs       int
}

// dispatch submits the batch through the dispatcher registered for the
// record, so concurrent submissions of the same asset share one in-flight
// guard. It returns the route the dispatcher navigated to.
func (s *Server) dispatch(r *http.Request, record ledger.RecordPayload, proposals []ledger.ProposalPayload) (string, error) {
	entry := s.acquire(record.RecordID)
	defer s.release(record.RecordID)

	if err := entry.dispatcher.Submit(r.Context(), record, proposals); err != nil {
		return "", err
	}
	s.mu.Lock()
	route := entry.route
	s.mu.Unlock()
	return route, nil
}

func (s *Server) acquire(id string) *inflightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.inflight[id]
	if !ok {
		entry = &inflightEntry{}
		nav := transaction.NavigatorFunc(func(path string) {
			s.mu.Lock()
			entry.route = path
			s.mu.Unlock()
		})
		entry.dispatcher = transaction.NewDispatcher(s.submitter,
			transaction.WithNavigator(nav),
			transaction.WithObserver(s.observer),
			transaction.WithLogger(s.logger),
		)
		s.inflight[id] = entry
	}
	entry.refs++
	return entry
}

func (s *Server) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.inflight[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.inflight, id)
	}
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "Asset %s has been submitted to the ledger.\n", id)
}
