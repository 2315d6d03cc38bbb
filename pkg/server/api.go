package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/openapi"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

type apiError struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

type apiCreated struct {
	RecordID string `json:"recordId"`
	Location string `json:"location"`
	Payloads int    `json:"payloads"`
}

type apiReporter struct {
	ID         string   `json:"id"`
	Input      string   `json:"input"`
	Key        string   `json:"key"`
	Properties []string `json:"properties"`
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
		return
	}

	if s.validator != nil {
		if err := s.validator.Validate(raw); err != nil {
			var verr *openapi.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, apiError{Error: "validation failed", Errors: verr.Errors})
				return
			}
			s.logger.Error("validate asset request", "error", err)
			writeJSON(w, http.StatusInternalServerError, apiError{Error: "validation unavailable"})
			return
		}
	}

	values, rows, err := decodeAssetRequest(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	list, err := agents.Visible(r.Context(), s.directory)
	if err != nil {
		s.logger.Warn("load agents", "error", err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: "agent directory unavailable"})
		return
	}
	if unknown := unknownReporters(list, rows); unknown != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "validation failed", Errors: unknown})
		return
	}

	state := form.NewState(form.WithValues(values), form.WithAgents(list))
	state.RestoreReporters(rows)

	if invalid := fieldErrors(s.layout, state); invalid != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "validation failed", Errors: invalid})
		return
	}

	record, proposals, err := s.builder.Build(state)
	if err != nil {
		var fieldErr *payload.FieldError
		if errors.As(err, &fieldErr) {
			writeJSON(w, http.StatusBadRequest, apiError{
				Error:  "validation failed",
				Errors: map[string][]string{fieldErr.Field: {fieldErr.Err.Error()}},
			})
			return
		}
		s.logger.Error("build asset payloads", "error", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "could not build payloads"})
		return
	}

	route, err := s.dispatch(r, record, proposals)
	if err != nil {
		status, body := submitErrorResponse(err)
		writeJSON(w, status, body)
		return
	}

	w.Header().Set("Location", route)
	writeJSON(w, http.StatusCreated, apiCreated{
		RecordID: record.RecordID,
		Location: route,
		Payloads: len(proposals) + 1,
	})
}

func submitErrorResponse(err error) (int, apiError) {
	if errors.Is(err, transaction.ErrSubmissionInFlight) {
		return http.StatusConflict, apiError{Error: "submission already in flight"}
	}
	var rejection *transaction.RejectionError
	if errors.As(err, &rejection) {
		msg := rejection.Message
		if msg == "" {
			msg = "ledger rejected the batch"
		}
		return http.StatusBadGateway, apiError{Error: msg, Errors: rejection.Errors}
	}
	return http.StatusBadGateway, apiError{Error: "ledger unavailable"}
}

// decodeAssetRequest splits a JSON body into scalar field values and reporter
// rows. Numbers stay json.Number so the builder sees the original digits.
func decodeAssetRequest(raw []byte) (map[string]any, []form.ReporterEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]json.RawMessage
	if err := dec.Decode(&body); err != nil {
		return nil, nil, fmt.Errorf("malformed JSON: %w", err)
	}

	values := make(map[string]any, len(body))
	var rows []form.ReporterEntry
	for key, msg := range body {
		if key == form.ReportersKey {
			var reporters []apiReporter
			if err := json.Unmarshal(msg, &reporters); err != nil {
				return nil, nil, fmt.Errorf("reporters: %w", err)
			}
			for _, rep := range reporters {
				input := strings.TrimSpace(rep.Input)
				if input == "" {
					input = strings.TrimSpace(rep.Key)
				}
				props := rep.Properties
				if props == nil {
					props = []string{}
				}
				rows = append(rows, form.ReporterEntry{ID: rep.ID, Input: input, Properties: props})
			}
			continue
		}

		valueDec := json.NewDecoder(bytes.NewReader(msg))
		valueDec.UseNumber()
		var value any
		if err := valueDec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		switch value.(type) {
		case nil:
			continue
		case string, json.Number, bool:
			values[key] = value
		default:
			return nil, nil, fmt.Errorf("%s: expected a scalar value", key)
		}
	}
	return values, rows, nil
}

// unknownReporters lists rows naming no visible agent. Blank rows, such as
// the form's trailing sentinel, are left for normalisation to drop.
func unknownReporters(list []agents.Agent, rows []form.ReporterEntry) map[string][]string {
	errs := make(map[string][]string)
	for i, row := range rows {
		if row.Input == "" {
			continue
		}
		if _, ok := agents.Resolve(list, row.Input); !ok {
			key := fmt.Sprintf("/reporters/%d/key", i)
			errs[key] = append(errs[key], fmt.Sprintf("no agent matches %q", row.Input))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}
