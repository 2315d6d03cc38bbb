package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// RejectError carries an HTTP status: an AuthorizeFunc rejecting a search, or
// the ledger refusing an agent listing.
type RejectError struct {
	Status int
	Reason string
}

func (e *RejectError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("agents: rejected with status %d", e.Status)
	}
	return "agents: " + e.Reason
}

// StatusCode reports the HTTP status of the rejection.
func (e *RejectError) StatusCode() int { return e.Status }

type searchResponse struct {
	Data []Option `json:"data"`
}

type searchHandler struct {
	dir    Directory
	cfg    SearchConfig
	logger *slog.Logger
}

// Handler serves reporter autocomplete: the visible agents matching the query
// parameter as value/label options.
func Handler(dir Directory, fns ...OptionFn) http.Handler {
	return newSearchHandler(dir, NewSearchConfig(fns...))
}

func newSearchHandler(dir Directory, cfg SearchConfig) *searchHandler {
	return &searchHandler{dir: dir, cfg: cfg.normalized(), logger: slog.Default()}
}

func (h *searchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if h.cfg.Authorize != nil {
		if err := h.cfg.Authorize(r); err != nil {
			h.fail(w, err, http.StatusForbidden)
			return
		}
	}

	visible, err := Visible(r.Context(), h.dir)
	if err != nil {
		h.logger.Warn("agents: search failed", "error", err)
		h.fail(w, err, http.StatusBadGateway)
		return
	}

	query := r.URL.Query()
	requested, err := strconv.Atoi(query.Get(h.cfg.LimitParam))
	if err != nil {
		requested = 0
	}
	results := SearchOptions(visible, query.Get(h.cfg.QueryParam), requested, h.cfg)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(searchResponse{Data: results}); err != nil {
		h.logger.Debug("agents: write response", "error", err)
	}
}

func (h *searchHandler) fail(w http.ResponseWriter, err error, status int) {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && coded.StatusCode() > 0 {
		status = coded.StatusCode()
	}
	http.Error(w, http.StatusText(status), status)
}
