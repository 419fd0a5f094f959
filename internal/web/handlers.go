package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/JonMunkholm/datagen/internal/logging"
	"github.com/JonMunkholm/datagen/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

var errMalformedRequest = errors.New("malformed request body")

// historyChangedEvent is sent as HX-Trigger so the history list refreshes.
const historyChangedEvent = "historyChanged"

// generateRequest is the body accepted by the generate endpoints, as JSON or
// form fields with the same names.
type generateRequest struct {
	Category     string      `json:"category"`
	Count        json.Number `json:"count"`
	Format       string      `json:"format"`
	Seed         *uint64     `json:"seed,omitempty"`
	Locale       string      `json:"locale,omitempty"`
	Schema       string      `json:"schema,omitempty"`
	SchemaFormat string      `json:"schema_format,omitempty"`
}

// generateResponse is the JSON form of a generation result.
type generateResponse struct {
	*core.Result
	SizeKB      string `json:"size_kb"`
	RecordLabel string `json:"record_label"`
	FileName    string `json:"file_name"`
}

// handleDashboard renders the main generator page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := s.service.History(ctx)
	if err != nil {
		// The page still works without history
		logging.FromContext(ctx).Warn("failed to load history", "error", err)
	}

	data := templates.DashboardData{
		Categories:    core.Categories(),
		Formats:       core.Formats(),
		History:       history,
		DefaultCount:  s.cfg.Generate.DefaultCount,
		DefaultFormat: s.cfg.Generate.DefaultFormat,
		MaxRecords:    s.cfg.Generate.MaxRecords,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render dashboard", "error", err)
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, core.Categories())
}

func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, core.Formats())
}

// handleGenerate produces a built-in category dataset.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerateRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	count, err := s.parseCount(req.Count)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Generate(r.Context(), core.Request{
		Category: req.Category,
		Count:    count,
		Format:   s.formatOrDefault(req.Format),
		Seed:     req.Seed,
		Locale:   req.Locale,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, result)
}

// handleGenerateCustom produces a dataset from schema text.
func (s *Server) handleGenerateCustom(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeGenerateRequest(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	count, err := s.parseCount(req.Count)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.GenerateCustom(r.Context(), core.CustomRequest{
		Schema:       req.Schema,
		SchemaFormat: core.SchemaFormat(strings.ToLower(req.SchemaFormat)),
		Count:        count,
		Format:       s.formatOrDefault(req.Format),
		Seed:         req.Seed,
		Locale:       req.Locale,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, result)
}

// handleListHistory returns recent runs as JSON, or the list fragment for HTMX.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if isHTMX(r) {
		s.renderHistory(w, r, entries)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHistory(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	if isHTMX(r) {
		s.renderHistory(w, r, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleReplay regenerates a built-in run from history.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.service.Replay(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeResult(w, r, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.service.LimiterStatus(),
	})
}

// decodeGenerateRequest reads a JSON body, or form fields otherwise.
func (s *Server) decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (generateRequest, error) {
	var req generateRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("%w: %v", errMalformedRequest, err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %v", errMalformedRequest, err)
	}
	req.Category = r.PostFormValue("category")
	req.Count = json.Number(strings.TrimSpace(r.PostFormValue("count")))
	req.Format = r.PostFormValue("format")
	req.Locale = r.PostFormValue("locale")
	req.Schema = r.PostFormValue("schema")
	req.SchemaFormat = r.PostFormValue("schema_format")
	if raw := strings.TrimSpace(r.PostFormValue("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: seed %q is not an unsigned integer", errMalformedRequest, raw)
		}
		req.Seed = &seed
	}
	return req, nil
}

// parseCount applies the configured default for an omitted count.
func (s *Server) parseCount(n json.Number) (int, error) {
	if n == "" {
		return s.cfg.Generate.DefaultCount, nil
	}
	return core.ParseCount(n.String())
}

func (s *Server) formatOrDefault(format string) string {
	if format == "" {
		return s.cfg.Generate.DefaultFormat
	}
	return format
}

// writeResult sends a result as an attachment (?download=1), an HTMX
// fragment, or JSON.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result *core.Result) {
	if r.URL.Query().Get("download") == "1" {
		contentType := "text/plain; charset=utf-8"
		if f, err := core.ParseFormat(result.Format); err == nil {
			contentType = f.Info().ContentType
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName()))
		w.Header().Set("Content-Length", strconv.Itoa(result.Bytes))
		w.Write([]byte(result.Output))
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("HX-Trigger", historyChangedEvent)
		if err := templates.ResultPanel(result).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render result", "error", err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, generateResponse{
		Result:      result,
		SizeKB:      result.SizeKB(),
		RecordLabel: result.RecordLabel(),
		FileName:    result.FileName(),
	})
}

func (s *Server) renderHistory(w http.ResponseWriter, r *http.Request, entries []core.HistoryEntry) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.HistoryList(entries).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render history", "error", err)
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
