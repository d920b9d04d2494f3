package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/plenix/tikrana/internal/archive"
	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/validate"
)

// fileField is the multipart field carrying the workbook.
const fileField = "file"

// AppInfo is the body of GET /api/app.
type AppInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Logo        string         `json:"logo,omitempty"`
	Parameters  config.Strings `json:"parameters"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success     bool             `json:"success"`
	RunID       string           `json:"runId,omitempty"`
	Stage       engine.Stage     `json:"stage,omitempty"`
	Category    failure.Category `json:"category"`
	Message     string           `json:"message"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Fields      []string         `json:"fields,omitempty"`
	Warnings    []validate.Issue `json:"warnings,omitempty"`
}

func errorResponse(err *failure.Error) ErrorResponse {
	return ErrorResponse{
		Category:    err.Category,
		Message:     err.Message,
		Suggestions: err.Suggestions,
		Fields:      err.Fields,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, err *failure.Error) {
	writeJSON(w, status, errorResponse(err))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadConfig writes a 503 and returns nil when the configuration is
// unavailable.
func (s *Server) loadConfig(w http.ResponseWriter, r *http.Request) *config.AppConfig {
	cfg, err := s.load(r.Context())
	if err != nil {
		s.logger.Error("configuration unavailable", "error", err)
		writeFailure(w, http.StatusServiceUnavailable, failure.Wrap(err, "Failed to load configuration"))
		return nil
	}
	return cfg
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	cfg := s.loadConfig(w, r)
	if cfg == nil {
		return
	}
	writeJSON(w, http.StatusOK, AppInfo{
		Name:        cfg.Name,
		Description: cfg.Description,
		Logo:        cfg.Logo,
		Parameters:  cfg.Parameters,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	cfg := s.loadConfig(w, r)
	if cfg == nil {
		return
	}
	writeJSON(w, http.StatusOK, config.DeriveRuntimeSources(cfg))
}

// handleProcess runs one upload through the engine.
// POST /api/sources/{name}/process
//
// The workbook travels in the "file" field; every other form field is user
// input for the header. Success returns the archive; failure returns 422 with
// an ErrorResponse.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	cfg := s.loadConfig(w, r)
	if cfg == nil {
		return
	}

	name := chi.URLParam(r, "name")
	source, ok := cfg.Source(name)
	if !ok {
		writeFailure(w, http.StatusNotFound, failure.NewConfig(
			fmt.Sprintf("Unknown source %q", name),
			"Available sources: "+fmt.Sprint(cfg.SourceNames()),
		))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	data, filename, input, err := readUpload(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeFailure(w, status, failure.NewFileFormat(err.Error(),
			"Upload the workbook as multipart/form-data in the \"file\" field"))
		return
	}

	res := s.engine.Process(engine.Request{
		Data:      data,
		Filename:  filename,
		Source:    *source,
		Result:    cfg.Result,
		UserInput: input,
	})
	if !res.Success {
		body := errorResponse(res.Error)
		body.RunID = res.RunID
		body.Stage = res.Stage
		body.Warnings = res.Warnings
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	entries, err := archive.FromResult(res, cfg.Result)
	if err == nil {
		data, err = archive.Build(entries...)
	}
	if err != nil {
		s.logger.Error("archive failed", "run", res.RunID, "error", err)
		writeFailure(w, http.StatusInternalServerError, failure.Wrap(err, "Failed to build archive"))
		return
	}

	h := w.Header()
	h.Set("Content-Type", archive.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.ArchiveName}))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Run-Id", res.RunID)
	h.Set("X-Warning-Count", strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readUpload returns the uploaded file, its name and the remaining form
// fields. Only the first value of a repeated field is kept.
func readUpload(r *http.Request) ([]byte, string, map[string]string, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, "", nil, fmt.Errorf("invalid upload: %w", err)
	}

	f, header, err := r.FormFile(fileField)
	if err != nil {
		return nil, "", nil, fmt.Errorf("missing %q field: %w", fileField, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", nil, fmt.Errorf("reading upload: %w", err)
	}

	input := make(map[string]string, len(r.MultipartForm.Value))
	for k, v := range r.MultipartForm.Value {
		if k != fileField && len(v) > 0 {
			input[k] = v[0]
		}
	}
	return data, header.Filename, input, nil
}
