package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aria-engine/pkg/apperrors"
	"github.com/ekaya-inc/aria-engine/pkg/upload"
)

func strPtr(s string) *string { return &s }

func newUploadHandler(t *testing.T, planner *fakePlanner, loader *fakeLoader) (*UploadHandler, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := upload.NewStore(dir, 1024, zap.NewNop())
	require.NoError(t, err)
	return NewUploadHandler(store, planner, loader, zap.NewNop()), dir
}

func multipartCSV(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzeCSV(t *testing.T) {
	planner := &fakePlanner{plan: &upload.Plan{
		Columns:        []string{"Store", "Notes"},
		SuggestedTable: "dim_store",
		ColumnMapping:  map[string]*string{"Store": strPtr("store_name"), "Notes": nil},
	}}
	h, dir := newUploadHandler(t, planner, &fakeLoader{})

	rec := httptest.NewRecorder()
	h.AnalyzeCSV(rec, multipartCSV(t, "file", "stores.csv", "Store,Notes\nHarbor,new\n"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "dim_store", body["suggested_table"])
	assert.Equal(t, planner.got, body["filename"])
	assert.Equal(t, map[string]any{"Store": "store_name", "Notes": nil}, body["column_mapping"])

	_, err := os.Stat(filepath.Join(dir, planner.got))
	assert.NoError(t, err, "file stays until execute-upload")
}

func TestAnalyzeCSV_Errors(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		h, _ := newUploadHandler(t, &fakePlanner{}, &fakeLoader{})
		rec := httptest.NewRecorder()
		h.AnalyzeCSV(rec, multipartCSV(t, "other", "a.csv", "a\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file part in the request.", decodeBody(t, rec)["message"])
	})

	t.Run("not csv", func(t *testing.T) {
		h, _ := newUploadHandler(t, &fakePlanner{}, &fakeLoader{})
		rec := httptest.NewRecorder()
		h.AnalyzeCSV(rec, multipartCSV(t, "file", "a.xlsx", "a\n"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		h, _ := newUploadHandler(t, &fakePlanner{}, &fakeLoader{})
		rec := httptest.NewRecorder()
		h.AnalyzeCSV(rec, multipartCSV(t, "file", "a.csv", strings.Repeat("x", 2048)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown table removes file", func(t *testing.T) {
		h, dir := newUploadHandler(t, &fakePlanner{err: fmt.Errorf("%w: %q", upload.ErrUnknownTable, "inventory")}, &fakeLoader{})
		rec := httptest.NewRecorder()
		h.AnalyzeCSV(rec, multipartCSV(t, "file", "a.csv", "a\n1\n"))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func postUpload(h *UploadHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/execute-upload", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ExecuteUpload(rec, req)
	return rec
}

func TestExecuteUpload(t *testing.T) {
	loader := &fakeLoader{out: &upload.Outcome{Table: "dim_store", RowsLoaded: 2, Message: "Successfully uploaded data to dim_store."}}
	h, _ := newUploadHandler(t, &fakePlanner{}, loader)

	rec := postUpload(h, `{"filename": "ab12_stores.csv", "suggested_table": "dim_store",
		"column_mapping": {"Store": "store_name", "Notes": null}, "confirmed": true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Successfully uploaded data to dim_store.", decodeBody(t, rec)["message"])
	assert.Equal(t, upload.Request{
		Filename: "ab12_stores.csv",
		Table:    "dim_store",
		Mapping:  map[string]string{"Store": "store_name"},
	}, loader.got)
}

func TestExecuteUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"missing filename", `{"suggested_table": "t", "column_mapping": {"a": "b"}}`, nil, http.StatusBadRequest, "Missing data for upload execution."},
		{"missing mapping", `{"filename": "f.csv", "suggested_table": "t"}`, nil, http.StatusBadRequest, "Missing data for upload execution."},
		{"bad json", `nope`, nil, http.StatusBadRequest, "Missing data for upload execution."},
		{"file gone", `{"filename": "f.csv", "suggested_table": "t", "column_mapping": {"a": "b"}}`,
			fmt.Errorf("%w: file f.csv", apperrors.ErrNotFound), http.StatusNotFound, "File f.csv not found on server."},
		{"no common columns", `{"filename": "f.csv", "suggested_table": "t", "column_mapping": {"a": null}}`,
			&upload.MappingError{Table: "t"}, http.StatusUnprocessableEntity, "AI mapping resulted in no common columns. Cannot upload."},
		{"unsupported", `{"filename": "f.csv", "suggested_table": "t", "column_mapping": {"a": "b"}}`,
			fmt.Errorf("%w: bulk CSV loading on SQL Server", apperrors.ErrUnsupported), http.StatusNotImplemented, ""},
		{"load failure", `{"filename": "f.csv", "suggested_table": "t", "column_mapping": {"a": "b"}}`,
			errors.New("copy failed"), http.StatusInternalServerError, "An unexpected error occurred during upload."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newUploadHandler(t, &fakePlanner{}, &fakeLoader{err: tt.err})
			rec := postUpload(h, tt.body)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
			}
		})
	}
}
