package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/service"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/response"
)

type fakeRoster struct {
	roster []models.Assignee
}

func (f *fakeRoster) ListAvailable(ctx context.Context) ([]models.Assignee, error) {
	return f.roster, nil
}

type noopAssignmentWriter struct{}

func (noopAssignmentWriter) InsertBatch(ctx context.Context, exec sqlx.ExtContext, batchID string, assignments []models.Assignment) error {
	return nil
}

func (noopAssignmentWriter) ListByBatch(ctx context.Context, batchID string) ([]models.Assignment, error) {
	return nil, nil
}

type noopLoadWriter struct{}

func (noopLoadWriter) UpdateLoads(ctx context.Context, exec sqlx.ExtContext, assignees []models.Assignee) error {
	return nil
}

func newCoverageHandlerFixture(t *testing.T) *CoverageHandler {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	roster := &fakeRoster{roster: []models.Assignee{
		{ID: "t1", FullName: "Teacher One", Role: models.AssigneeRoleTeacher, WaitingQuota: 10, Available: true},
	}}
	svc := service.NewCoverageService(roster, noopAssignmentWriter{}, noopLoadWriter{}, sqlx.NewDb(db, "sqlmock"), nil, nil, nil, service.CoverageServiceConfig{})
	return NewCoverageHandler(svc, service.NewExportService(nil, nil))
}

func TestCoverageHandlerAllocate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCoverageHandlerFixture(t)

	body := `{"requests":[{"period":1,"classLabel":"9A","subject":"Math"}]}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/coverage/allocations", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Allocate(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "t1")
}

func TestCoverageHandlerAllocateRejectsEmptyPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCoverageHandlerFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/coverage/allocations", strings.NewReader(`{"requests":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Allocate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverageHandlerBatchNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCoverageHandlerFixture(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/coverage/allocations/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Batch(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCoverageHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newCoverageHandlerFixture(t)

	// Allocate first so a batch exists to export.
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/coverage/allocations",
		strings.NewReader(`{"requests":[{"period":1,"classLabel":"9A","subject":"Math"}]}`))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.Allocate(c)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			BatchID string `json:"batchId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.BatchID)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/coverage/allocations/"+envelope.Data.BatchID+"/export/csv", nil)
	c.Params = gin.Params{{Key: "id", Value: envelope.Data.BatchID}}

	handler.ExportCSV(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Teacher One")
}
