package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-importer/internal/domains/importer/model"
)

type fakeImportService struct {
	lastReq model.BatchRequest
	result  *model.BatchResult
	state   *model.JobState
	err     error
	resets  []string
}

func (f *fakeImportService) RunBatch(_ context.Context, req model.BatchRequest) (*model.BatchResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeImportService) Progress(context.Context, string) (*model.JobState, error) {
	return f.state, f.err
}

func (f *fakeImportService) Reset(_ context.Context, jobID string) error {
	f.resets = append(f.resets, jobID)
	return f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(svc *fakeImportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewImportHandler(svc, Options{DefaultBatchSize: 100, MaxBatchSize: 500})
	r.POST("/imports/start", h.StartImport)
	r.GET("/imports/progress", h.CheckProgress)
	r.DELETE("/imports/progress", h.ResetProgress)
	return r
}

func do(t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestStartImport(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantReq    model.BatchRequest
		wantCode   string
	}{
		{
			name:       "defaults",
			target:     "/imports/start",
			wantStatus: http.StatusOK,
			wantReq:    model.BatchRequest{BatchSize: 100},
		},
		{
			name:       "json body",
			target:     "/imports/start",
			body:       `{"batch_size":25,"start_row":50,"job_id":"nightly"}`,
			wantStatus: http.StatusOK,
			wantReq:    model.BatchRequest{JobID: "nightly", BatchSize: 25, StartRow: 50},
		},
		{
			name:       "query parameters",
			target:     "/imports/start?batch_size=10&start_row=20",
			wantStatus: http.StatusOK,
			wantReq:    model.BatchRequest{BatchSize: 10, StartRow: 20},
		},
		{name: "zero batch", target: "/imports/start", body: `{"batch_size":0}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "batch over max", target: "/imports/start", body: `{"batch_size":501}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "negative offset", target: "/imports/start", body: `{"start_row":-1}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "bad job id", target: "/imports/start", body: `{"job_id":"../etc"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "malformed json", target: "/imports/start", body: `{"batch_size":`, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeImportService{result: &model.BatchResult{Imported: 3, Total: 9, NextRow: 3}}
			w, env := do(t, setupRouter(svc), http.MethodPost, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}

			assert.True(t, env.Success)
			assert.Equal(t, tt.wantReq, svc.lastReq)

			var data model.StartImportResponse
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, 3, data.Imported)
			assert.Equal(t, 9, data.Total)
			assert.Equal(t, 3, data.NextRow)
			assert.False(t, data.Completed)
		})
	}
}

func TestStartImport_ServiceErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{err: model.ErrFileNotFound, wantStatus: http.StatusNotFound, wantCode: "IMPORT_FILE_NOT_FOUND"},
		{err: fmt.Errorf("count: %w", model.ErrEmptyHeader), wantStatus: http.StatusUnprocessableEntity, wantCode: "IMPORT_EMPTY_HEADER"},
		{err: model.ErrInvalidBatchSize, wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{err: fmt.Errorf("redis down"), wantStatus: http.StatusInternalServerError, wantCode: "SYS_001"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &fakeImportService{err: tt.err}
			w, env := do(t, setupRouter(svc), http.MethodPost, "/imports/start", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestCheckProgress(t *testing.T) {
	t.Run("no active run", func(t *testing.T) {
		w, env := do(t, setupRouter(&fakeImportService{}), http.MethodGet, "/imports/progress", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var data model.ProgressResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, model.ProgressResponse{JobID: model.DefaultJobID}, data)
	})

	t.Run("active run", func(t *testing.T) {
		svc := &fakeImportService{state: &model.JobState{JobID: "nightly", Imported: 40, Total: 120, Cursor: 42}}
		w, env := do(t, setupRouter(svc), http.MethodGet, "/imports/progress?job_id=nightly", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var data model.ProgressResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 40, data.Imported)
		assert.Equal(t, 120, data.Total)
		assert.Equal(t, 42, data.Cursor)
		assert.True(t, data.Active)
	})
}

func TestResetProgress(t *testing.T) {
	svc := &fakeImportService{}
	w, _ := do(t, setupRouter(svc), http.MethodDelete, "/imports/progress?job_id=nightly", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"nightly"}, svc.resets)
}
