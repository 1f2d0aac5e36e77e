package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// NewHTTPHandler exposes the ingestion service over HTTP:
//
//	POST /ingest                multipart upload (file + form options)
//	GET  /tables                list destination tables
//	GET  /tables/{name}/schema  fetch one table's schema
func NewHTTPHandler(service *Service, defaults ImportOptions) http.Handler {
	h := &handler{service: service, defaults: defaults}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest", h.ingest)
	mux.HandleFunc("GET /tables", h.tables)
	mux.HandleFunc("GET /tables/{name}/schema", h.tableSchema)
	return mux
}

type handler struct {
	service  *Service
	defaults ImportOptions
}

func (h *handler) ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	tableName := strings.TrimSpace(r.FormValue("table"))
	if tableName == "" {
		http.Error(w, "table is required", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	opts := h.optionsFromForm(r)

	var result any
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".xlsx":
		result = h.service.ImportExcel(r.Context(), data, tableName, opts)
	case ".csv", ".tsv", ".txt", "":
		result = h.service.ImportCSV(r.Context(), string(data), tableName, opts)
	default:
		http.Error(w, fmt.Sprintf("unsupported file format: %s", ext), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.service.Tables(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (h *handler) tableSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.service.TableSchema(r.Context(), r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (h *handler) optionsFromForm(r *http.Request) ImportOptions {
	opts := h.defaults

	if v := r.FormValue("delimiter"); v != "" {
		opts.Parse.Delimiter = v
	}
	if v := r.FormValue("hasHeader"); v != "" {
		opts.Parse.HasHeader = v == "true"
	}
	if v := r.FormValue("expectedColumns"); v != "" {
		opts.ExpectedColumns = splitList(v)
	}
	if v := r.FormValue("requiredColumns"); v != "" {
		opts.RequiredColumns = splitList(v)
	}
	if v := r.FormValue("validateSchema"); v != "" {
		opts.ValidateSchema = v == "true"
	}
	if v := r.FormValue("batchSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Store.BatchSize = n
		}
	}
	if v := r.FormValue("replaceExisting"); v != "" {
		opts.Store.ReplaceExisting = v == "true"
	}
	if v := r.FormValue("strictValidation"); v != "" {
		opts.Store.StrictValidation = v == "true"
	}
	if v := r.FormValue("useTransaction"); v != "" {
		opts.Store.UseTransaction = v == "true"
	}
	return opts
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
