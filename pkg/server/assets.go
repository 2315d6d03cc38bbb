package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

const actionRefresh = "refresh"

// formPage is everything needed to redraw the HTML form.
type formPage struct {
	state      *form.State
	errors     map[string][]string
	formErrors []string
	submitting bool
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	page := formPage{state: form.NewState()}
	list, err := s.candidates(r)
	if err != nil {
		page.formErrors = append(page.formErrors, "The agent directory is unavailable; reporters cannot be resolved right now.")
	}
	page.state.SetAgents(list)
	s.renderForm(w, r, http.StatusOK, page)
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if s.csrfEnabled() && !s.csrfValid(r) {
		s.logger.Warn("csrf token mismatch", "remote", r.RemoteAddr)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	values, rows := parseFormValues(r.PostForm, s.layout)
	page := formPage{state: form.NewState(form.WithValues(values))}

	list, err := s.candidates(r)
	if err != nil {
		page.formErrors = append(page.formErrors, "The agent directory is unavailable; reporters cannot be resolved right now.")
	}
	page.state.SetAgents(list)
	page.state.RestoreReporters(rows)

	if r.PostForm.Get("action") == actionRefresh {
		s.renderForm(w, r, http.StatusOK, page)
		return
	}
	if err != nil {
		s.renderForm(w, r, http.StatusBadGateway, page)
		return
	}

	if invalid := fieldErrors(s.layout, page.state); invalid != nil {
		page.errors = invalid
		s.renderForm(w, r, http.StatusUnprocessableEntity, page)
		return
	}

	record, proposals, err := s.builder.Build(page.state)
	if err != nil {
		var fieldErr *payload.FieldError
		if errors.As(err, &fieldErr) {
			page.errors = map[string][]string{fieldErr.Field: {"Enter a valid number"}}
			s.renderForm(w, r, http.StatusUnprocessableEntity, page)
			return
		}
		s.logger.Error("build asset payloads", "error", err)
		page.formErrors = append(page.formErrors, "The asset could not be prepared for submission.")
		s.renderForm(w, r, http.StatusInternalServerError, page)
		return
	}

	route, err := s.dispatch(r, record, proposals)
	if err != nil {
		status := s.applySubmitError(&page, err)
		s.renderForm(w, r, status, page)
		return
	}
	http.Redirect(w, r, route, http.StatusSeeOther)
}

// applySubmitError folds a dispatch failure into the page and returns the
// response status.
func (s *Server) applySubmitError(page *formPage, err error) int {
	if errors.Is(err, transaction.ErrSubmissionInFlight) {
		page.submitting = true
		page.formErrors = append(page.formErrors, "This asset is already being submitted.")
		return http.StatusConflict
	}

	var rejection *transaction.RejectionError
	if errors.As(err, &rejection) {
		mapped := render.MapErrorPayload(s.layout, rejection.Errors)
		page.errors = mapped.Fields
		page.formErrors = render.MergeFormErrors(page.formErrors, mapped.Form...)
		if rejection.Message != "" {
			page.formErrors = render.MergeFormErrors(page.formErrors, rejection.Message)
		}
		if len(page.formErrors) == 0 && len(page.errors) == 0 {
			page.formErrors = []string{"The ledger rejected the submission."}
		}
		if rejection.Status >= 400 && rejection.Status < 500 {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	}

	page.formErrors = append(page.formErrors, "The ledger could not be reached. Your entries were kept; try again.")
	return http.StatusBadGateway
}

func (s *Server) candidates(r *http.Request) ([]agents.Agent, error) {
	list, err := agents.Visible(r.Context(), s.directory)
	if err != nil {
		s.logger.Warn("load agents", "error", err)
		return nil, err
	}
	return list, nil
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	opts := render.RenderOptions{
		Action:       FormPath,
		Method:       http.MethodPost,
		Errors:       page.errors,
		FormErrors:   page.formErrors,
		HiddenFields: s.hiddenFields(w, r),
		Submitting:   page.submitting,
	}
	body, err := s.renderer.Render(r.Context(), render.NewView(s.layout, page.state), opts)
	if err != nil {
		s.logger.Error("render form", "renderer", s.renderer.Name(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
