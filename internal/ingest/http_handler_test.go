package ingest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/budgetsakkie/pricefeed/internal/domain"
)

func multipartUpload(t *testing.T, fileName, contents string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHTTPIngest(t *testing.T) {
	gateway := priceGateway()
	handler := NewHTTPHandler(NewService(gateway), DefaultImportOptions())

	body, contentType := multipartUpload(t,
		"prices.csv",
		"product_name,current_price\nMilk,12.50\n",
		map[string]string{"table": "prices"},
	)

	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.StorageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success || result.RowsProcessed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(gateway.Rows("prices")) != 1 {
		t.Fatalf("row was not stored")
	}
}

func TestHTTPIngestMissingTable(t *testing.T) {
	handler := NewHTTPHandler(NewService(priceGateway()), DefaultImportOptions())

	body, contentType := multipartUpload(t, "prices.csv", "a\n1\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHTTPIngestUnsupportedFormat(t *testing.T) {
	handler := NewHTTPHandler(NewService(priceGateway()), DefaultImportOptions())

	body, contentType := multipartUpload(t, "prices.pdf", "junk", map[string]string{"table": "prices"})
	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHTTPTables(t *testing.T) {
	handler := NewHTTPHandler(NewService(priceGateway()), DefaultImportOptions())

	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var payload struct {
		Tables []string `json:"tables"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Tables) != 1 || payload.Tables[0] != "prices" {
		t.Fatalf("unexpected tables: %v", payload.Tables)
	}
}

func TestHTTPTableSchema(t *testing.T) {
	handler := NewHTTPHandler(NewService(priceGateway()), DefaultImportOptions())

	req := httptest.NewRequest(http.MethodGet, "/tables/prices/schema", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var schema domain.TableSchema
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if schema.Name != "prices" || len(schema.Columns) != 2 {
		t.Fatalf("unexpected schema: %+v", schema)
	}

	req = httptest.NewRequest(http.MethodGet, "/tables/missing/schema", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHTTPIngestFormOptions(t *testing.T) {
	gateway := priceGateway()
	handler := NewHTTPHandler(NewService(gateway), DefaultImportOptions())

	body, contentType := multipartUpload(t,
		"prices.csv",
		"product_name;current_price\nMilk;12.50\n",
		map[string]string{
			"table":           "prices",
			"delimiter":       ";",
			"expectedColumns": "product_name, current_price",
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.StorageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		t.Fatalf("unexpected result: %+v", result)
	}
}
