package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tilbrook/vendex/internal/parser"
	"github.com/tilbrook/vendex/internal/pipeline"
)

// handleExtract runs the pipeline synchronously and returns the full
// processing report. Suited to small documents; large uploads should use
// the async ingest endpoint instead.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readUploadRequest(w, r)
	if !ok {
		return
	}

	report, err := s.processor.Process(r.Context(), req)
	if err != nil {
		writeExtractError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// writeExtractError maps pipeline failures to HTTP status codes. Unsupported
// formats are a client error; documents whose every extraction stage failed
// are unprocessable rather than a server fault.
func writeExtractError(w http.ResponseWriter, err error) {
	var unsupported *parser.UnsupportedFormatError
	if errors.As(err, &unsupported) {
		jsonError(w, unsupported.Error(), http.StatusBadRequest)
		return
	}
	var failure *parser.ExtractionFailure
	if errors.As(err, &failure) {
		jsonError(w, failure.Error(), http.StatusUnprocessableEntity)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// readUploadRequest parses the shared multipart upload shape: a "file" part
// plus optional expected_count and instructions fields. On failure it writes
// the error response and returns ok=false.
func (s *Server) readUploadRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return pipeline.Request{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return pipeline.Request{}, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, ok := s.readFileData(w, file, filename)
	if !ok {
		return pipeline.Request{}, false
	}

	expected := 0
	if v := r.FormValue("expected_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			expected = n
		}
	}

	return pipeline.Request{
		Data:          data,
		Filename:      filename,
		ExpectedCount: expected,
		Instructions:  r.FormValue("instructions"),
	}, true
}
